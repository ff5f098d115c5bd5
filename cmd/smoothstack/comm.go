package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/artpar/smoothstack/internal/core/domain"
	"github.com/artpar/smoothstack/internal/shell/fabric"
)

// loadPersistedChannels re-registers every channel record on disk under
// dir into reg, so channels configured in an earlier CLI invocation are
// live again in this one. Registration failures (e.g. a kv-broker that's
// no longer reachable) are skipped with a line to stderr rather than
// aborting — the CLI should still work for unrelated commands.
func loadPersistedChannels(dir string, reg *fabric.Registry) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create comm dir: %w", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".yaml" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		var ch domain.CommunicationChannel
		if err := yaml.Unmarshal(data, &ch); err != nil {
			continue
		}
		if err := reg.Register(ch); err != nil {
			fmt.Fprintf(os.Stderr, "skipping channel %q: %v\n", ch.Name, err)
		}
	}
	return nil
}

func persistChannel(dir string, ch domain.CommunicationChannel) error {
	data, err := yaml.Marshal(ch)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, ch.Name+".yaml"), data, 0644)
}

func removePersistedChannel(dir, name string) error {
	err := os.Remove(filepath.Join(dir, name+".yaml"))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func newCommCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comm",
		Short: "Manage communication channels between containers",
	}
	cmd.AddCommand(
		newCommConfigureRedisCmd(a),
		newCommConfigureDirectCmd(a),
		newCommConfigureNetworkCmd(a),
		newCommConfigureVolumeCmd(a),
		newCommPublishCmd(a),
		newCommListCmd(a),
		newCommShowCmd(a),
		newCommRemoveCmd(a),
	)
	return cmd
}

func registerAndPersist(a *app, ch domain.CommunicationChannel) error {
	reg, err := a.fabricRegistry()
	if err != nil {
		return err
	}
	if err := reg.Register(ch); err != nil {
		return err
	}
	return persistChannel(a.cfg.CommDir(), ch)
}

func newCommConfigureRedisCmd(a *app) *cobra.Command {
	var host string
	var port, db int
	var password string
	var participants []string

	c := &cobra.Command{
		Use:   "configure-redis NAME",
		Short: "Configure a kv-broker (Redis) communication channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch := domain.CommunicationChannel{
				Name: args[0], Type: domain.TransportKVBroker, ParticipantNames: participants,
				CreatedAt: time.Now(),
				KVBroker:  &domain.KVBrokerConfig{Host: host, Port: port, Database: db, Password: password},
			}
			if err := registerAndPersist(a, ch); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "channel %q configured\n", ch.Name)
			return nil
		},
	}
	c.Flags().StringVar(&host, "host", "localhost", "redis host")
	c.Flags().IntVar(&port, "port", 6379, "redis port")
	c.Flags().IntVar(&db, "db", 0, "redis database index")
	c.Flags().StringVar(&password, "password", "", "redis password")
	c.Flags().StringSliceVar(&participants, "container", nil, "participating container name")
	return c
}

func newCommConfigureDirectCmd(a *app) *cobra.Command {
	var protocol, host string
	var port int
	var participants []string

	c := &cobra.Command{
		Use:   "configure-direct NAME",
		Short: "Configure a direct-socket communication channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch := domain.CommunicationChannel{
				Name: args[0], Type: domain.TransportDirectSocket, ParticipantNames: participants,
				CreatedAt:    time.Now(),
				DirectSocket: &domain.DirectSocketConfig{Protocol: domain.SocketProtocol(protocol), Host: host, Port: port},
			}
			if err := registerAndPersist(a, ch); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "channel %q configured\n", ch.Name)
			return nil
		},
	}
	c.Flags().StringVar(&protocol, "protocol", "tcp", "tcp or udp")
	c.Flags().StringVar(&host, "host", "", "socket host")
	c.Flags().IntVar(&port, "port", 0, "socket port")
	c.Flags().StringSliceVar(&participants, "container", nil, "participating container name")
	return c
}

func newCommConfigureNetworkCmd(a *app) *cobra.Command {
	var networkName string
	var participants []string

	c := &cobra.Command{
		Use:   "configure-network NAME",
		Short: "Configure a runtime-network (diagnostic-only) communication channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch := domain.CommunicationChannel{
				Name: args[0], Type: domain.TransportRuntimeNetwork, ParticipantNames: participants,
				CreatedAt:      time.Now(),
				RuntimeNetwork: &domain.RuntimeNetworkConfig{Network: networkName},
			}
			if err := registerAndPersist(a, ch); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "channel %q configured\n", ch.Name)
			return nil
		},
	}
	c.Flags().StringVar(&networkName, "network", "", "engine network name")
	c.Flags().StringSliceVar(&participants, "container", nil, "participating container name")
	return c
}

func newCommConfigureVolumeCmd(a *app) *cobra.Command {
	var volume, mountPath string
	var participants []string

	c := &cobra.Command{
		Use:   "configure-volume NAME",
		Short: "Configure a shared-volume communication channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch := domain.CommunicationChannel{
				Name: args[0], Type: domain.TransportSharedVolume, ParticipantNames: participants,
				CreatedAt:    time.Now(),
				SharedVolume: &domain.SharedVolumeConfig{Volume: volume, MountPath: mountPath},
			}
			if err := registerAndPersist(a, ch); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "channel %q configured\n", ch.Name)
			return nil
		},
	}
	c.Flags().StringVar(&volume, "volume", "", "engine volume name")
	c.Flags().StringVar(&mountPath, "mount-path", "", "mount path inside participating containers")
	c.Flags().StringSliceVar(&participants, "container", nil, "participating container name")
	return c
}

func newCommPublishCmd(a *app) *cobra.Command {
	var msgType, source string
	var targets []string

	c := &cobra.Command{
		Use:   "publish NAME CONTENT",
		Short: "Publish a message on a configured channel",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.fabricRegistry()
			if err != nil {
				return err
			}
			msg, err := reg.Publish(context.Background(), args[0], args[1], domain.MessageType(msgType), source, targets)
			if err != nil {
				return err
			}
			return printResult(cmd, a, msg, func() {
				fmt.Fprintf(cmd.OutOrStdout(), "published %s on %q\n", msg.ID, args[0])
			})
		},
	}
	c.Flags().StringVar(&msgType, "type", string(domain.MessageData), "message type: command, event, data, heartbeat")
	c.Flags().StringVar(&source, "source", "", "originating container name")
	c.Flags().StringSliceVar(&targets, "target", nil, "target container name (repeatable, empty = broadcast)")
	return c
}

func newCommListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured communication channels",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.fabricRegistry()
			if err != nil {
				return err
			}
			channels := reg.List()
			sort.Slice(channels, func(i, j int) bool { return channels[i].Name < channels[j].Name })
			return printResult(cmd, a, channels, func() {
				for _, ch := range channels {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tactive=%t\n", ch.Name, ch.Type, ch.Active)
				}
			})
		},
	}
}

func newCommShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME",
		Short: "Show a communication channel's configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.fabricRegistry()
			if err != nil {
				return err
			}
			ch, err := reg.Get(args[0])
			if err != nil {
				return err
			}
			return printResult(cmd, a, ch, func() {
				fmt.Fprintf(cmd.OutOrStdout(), "%+v\n", ch)
			})
		},
	}
}

func newCommRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove NAME",
		Short: "Remove a communication channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.fabricRegistry()
			if err != nil {
				return err
			}
			if err := reg.Unregister(args[0]); err != nil {
				return err
			}
			if err := removePersistedChannel(a.cfg.CommDir(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "channel %q removed\n", args[0])
			return nil
		},
	}
}
