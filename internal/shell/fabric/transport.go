// Package fabric implements the four wire transports behind the
// Communication Fabric (C4): kv-broker, direct-socket, runtime-network,
// and shared-volume. All publish the same domain.Message envelope, built
// and serialized by internal/core/fabric.
package fabric

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/artpar/smoothstack/internal/core/domain"
	corefabric "github.com/artpar/smoothstack/internal/core/fabric"
	"github.com/artpar/smoothstack/internal/shell/engine"
)

// Transport publishes messages on a configured channel and reports its
// own liveness.
type Transport interface {
	Publish(ctx context.Context, msg domain.Message) error
	Ping(ctx context.Context) error
	Close() error
}

// NewTransport builds the Transport implementation matching ch.Type,
// validating ch's config block first.
func NewTransport(ch domain.CommunicationChannel, client engine.Client) (Transport, error) {
	if err := corefabric.ValidateChannel(ch); err != nil {
		return nil, err
	}

	switch ch.Type {
	case domain.TransportKVBroker:
		return newKVBrokerTransport(*ch.KVBroker, ch.Name), nil
	case domain.TransportDirectSocket:
		return newDirectSocketTransport(*ch.DirectSocket), nil
	case domain.TransportRuntimeNetwork:
		return newRuntimeNetworkTransport(*ch.RuntimeNetwork, ch.Name, ch.ParticipantNames, client), nil
	case domain.TransportSharedVolume:
		return newSharedVolumeTransport(*ch.SharedVolume, ch.ParticipantNames, client), nil
	default:
		return nil, fmt.Errorf("unsupported transport %q", ch.Type)
	}
}

// =============================================================================
// kv-broker
// =============================================================================

// kvBrokerTransport publishes messages on a Redis pub/sub channel.
type kvBrokerTransport struct {
	client      *redis.Client
	channelName string
}

func newKVBrokerTransport(cfg domain.KVBrokerConfig, channelName string) *kvBrokerTransport {
	return &kvBrokerTransport{
		client: redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			DB:       cfg.Database,
			Password: cfg.Password,
		}),
		channelName: channelName,
	}
}

func (t *kvBrokerTransport) Publish(ctx context.Context, msg domain.Message) error {
	data, err := corefabric.Serialize(msg)
	if err != nil {
		return err
	}
	return t.client.Publish(ctx, t.channelName, data).Err()
}

func (t *kvBrokerTransport) Ping(ctx context.Context) error {
	return t.client.Ping(ctx).Err()
}

func (t *kvBrokerTransport) Close() error {
	return t.client.Close()
}

// =============================================================================
// direct-socket
// =============================================================================

// directSocketTransport dials a fresh connection per publish and writes
// the serialized message, closing immediately after (spec.md §4.4: no
// long-lived connection is assumed, since the peer may not be listening
// between messages).
type directSocketTransport struct {
	network string
	addr    string
}

func newDirectSocketTransport(cfg domain.DirectSocketConfig) *directSocketTransport {
	return &directSocketTransport{
		network: string(cfg.Protocol),
		addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
	}
}

func (t *directSocketTransport) Publish(ctx context.Context, msg domain.Message) error {
	data, err := corefabric.Serialize(msg)
	if err != nil {
		return err
	}

	d := net.Dialer{Timeout: 3 * time.Second}
	conn, err := d.DialContext(ctx, t.network, t.addr)
	if err != nil {
		return fmt.Errorf("dial %s %s: %w", t.network, t.addr, err)
	}
	defer conn.Close()

	_, err = conn.Write(append(data, '\n'))
	return err
}

func (t *directSocketTransport) Ping(ctx context.Context) error {
	d := net.Dialer{Timeout: 1 * time.Second}
	conn, err := d.DialContext(ctx, t.network, t.addr)
	if err != nil {
		return err
	}
	return conn.Close()
}

func (t *directSocketTransport) Close() error { return nil }

// =============================================================================
// runtime-network
// =============================================================================

// runtimeNetworkTransport delivers a message as a diagnostic write into
// each participant container, via the container engine's Exec (spec.md's
// Open Question: no reader contract is assumed for this transport).
type runtimeNetworkTransport struct {
	channelName  string
	networkName  string
	participants []string
	client       engine.Client
}

func newRuntimeNetworkTransport(cfg domain.RuntimeNetworkConfig, channelName string, participants []string, client engine.Client) *runtimeNetworkTransport {
	return &runtimeNetworkTransport{channelName: channelName, networkName: cfg.Network, participants: participants, client: client}
}

func (t *runtimeNetworkTransport) Publish(ctx context.Context, msg domain.Message) error {
	data, err := corefabric.Serialize(msg)
	if err != nil {
		return err
	}

	path := fmt.Sprintf("/tmp/smoothstack_comm_%s", t.channelName)
	script := fmt.Sprintf("cat > %s << 'SMOOTHSTACK_EOF'\n%s\nSMOOTHSTACK_EOF", path, string(data))

	for _, containerID := range t.participants {
		res, err := t.client.Exec(ctx, containerID, []string{"sh", "-c", script})
		if err != nil {
			return fmt.Errorf("write to %s: %w", containerID, err)
		}
		if res.ExitCode != 0 {
			return fmt.Errorf("write to %s exited %d: %s", containerID, res.ExitCode, res.Stderr)
		}
	}
	return nil
}

func (t *runtimeNetworkTransport) Ping(ctx context.Context) error {
	_, err := t.client.NetworkInspect(t.networkName)
	return err
}

func (t *runtimeNetworkTransport) Close() error { return nil }

// =============================================================================
// shared-volume
// =============================================================================

// sharedVolumeTransport writes one JSON file per message under the
// channel's mount path inside the first participant container. The
// fabric never touches the host filesystem directly, since the volume
// may be backed by a remote Docker host (spec.md §4.4).
type sharedVolumeTransport struct {
	volumeName   string
	mountPath    string
	participants []string
	client       engine.Client
}

func newSharedVolumeTransport(cfg domain.SharedVolumeConfig, participants []string, client engine.Client) *sharedVolumeTransport {
	return &sharedVolumeTransport{volumeName: cfg.Volume, mountPath: cfg.MountPath, participants: participants, client: client}
}

func (t *sharedVolumeTransport) Publish(ctx context.Context, msg domain.Message) error {
	if len(t.participants) == 0 {
		return fmt.Errorf("shared-volume channel has no participants")
	}
	data, err := corefabric.Serialize(msg)
	if err != nil {
		return err
	}

	dir := fmt.Sprintf("%s/messages", t.mountPath)
	path := fmt.Sprintf("%s/%s.json", dir, msg.ID)
	script := fmt.Sprintf("mkdir -p %s && cat > %s << 'SMOOTHSTACK_EOF'\n%s\nSMOOTHSTACK_EOF", dir, path, string(data))

	res, err := t.client.Exec(ctx, t.participants[0], []string{"sh", "-c", script})
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("write message exited %d: %s", res.ExitCode, res.Stderr)
	}
	return nil
}

func (t *sharedVolumeTransport) Ping(ctx context.Context) error {
	if len(t.participants) == 0 {
		return fmt.Errorf("shared-volume channel has no participants")
	}
	_, found, err := t.client.VolumeGet(t.volumeName)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("volume %s not found", t.volumeName)
	}
	return nil
}

func (t *sharedVolumeTransport) Close() error { return nil }
