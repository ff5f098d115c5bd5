package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/artpar/smoothstack/internal/core/compose"
	"github.com/artpar/smoothstack/internal/core/domain"
)

func newServiceCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Manage service groups",
	}

	cmd.AddCommand(
		newServiceListCmd(a),
		newServiceCreateCmd(a),
		newServiceDeleteCmd(a),
		newServiceDeployCmd(a),
		newServiceStartCmd(a),
		newServiceStopCmd(a),
		newServiceRemoveCmd(a),
		newServiceStatusCmd(a),
		newServiceInspectCmd(a),
		newServiceExportCmd(a),
		newServiceImportCmd(a),
	)
	return cmd
}

func newServiceListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all service groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.groupStore()
			if err != nil {
				return err
			}
			groups, err := store.List()
			if err != nil {
				return err
			}
			return printResult(cmd, a, groups, func() {
				for _, g := range groups {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d services\n", g.Name, g.Status, len(g.Services))
				}
			})
		},
	}
}

func newServiceCreateCmd(a *app) *cobra.Command {
	var fromCompose string
	var description string

	c := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a new empty service group, or import one from a docker-compose file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.groupStore()
			if err != nil {
				return err
			}

			var group *domain.ServiceGroup
			if fromCompose != "" {
				data, err := os.ReadFile(fromCompose)
				if err != nil {
					return fmt.Errorf("read compose file: %w", err)
				}
				spec, err := compose.ParseComposeSpec(string(data))
				if err != nil {
					return fmt.Errorf("parse compose file: %w", err)
				}
				var warnings []string
				group, warnings = compose.ToServiceGroup(spec, args[0])
				for _, w := range warnings {
					fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w)
				}
			} else {
				group = domain.NewServiceGroup(args[0], description)
			}

			if problems := group.Validate(); len(problems) > 0 {
				return printMessages(cmd, false, problems)
			}
			if err := store.Create(group); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "service group %q created\n", group.Name)
			return nil
		},
	}
	c.Flags().StringVar(&fromCompose, "from-compose", "", "import services and networks from a docker-compose file")
	c.Flags().StringVar(&description, "description", "", "description for the new group")
	return c
}

func newServiceDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a service group's record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.groupStore()
			if err != nil {
				return err
			}
			if err := store.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "service group %q deleted\n", args[0])
			return nil
		},
	}
}

func newServiceDeployCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "deploy NAME",
		Short: "Create a service group's networks and containers, without starting them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.groupStore()
			if err != nil {
				return err
			}
			group, err := store.Get(args[0])
			if err != nil {
				return err
			}
			orch, err := a.orchestrator()
			if err != nil {
				return err
			}
			result := orch.Deploy(context.Background(), group)
			if result.Success {
				group.Status = domain.GroupCreated
			} else {
				group.Status = domain.GroupFailed
			}
			if saveErr := store.Save(group); saveErr != nil {
				return saveErr
			}
			return printMessages(cmd, result.Success, result.Messages)
		},
	}
}

func newServiceStartCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "start NAME",
		Short: "Deploy if needed, then start a service group in dependency order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStart(cmd, a, args[0])
		},
	}
}

func runStart(cmd *cobra.Command, a *app, name string) error {
	store, err := a.groupStore()
	if err != nil {
		return err
	}
	group, err := store.Get(name)
	if err != nil {
		return err
	}
	orch, err := a.orchestrator()
	if err != nil {
		return err
	}

	deployResult := orch.Deploy(context.Background(), group)
	messages := append([]string{}, deployResult.Messages...)
	if !deployResult.Success {
		group.Status = domain.GroupFailed
		if err := store.Save(group); err != nil {
			return err
		}
		return printMessages(cmd, false, messages)
	}

	startMessages := orch.Start(context.Background(), group)
	messages = append(messages, startMessages...)
	success := len(startMessages) == 0
	if success {
		group.Status = domain.GroupRunning
	} else {
		group.Status = domain.GroupFailed
	}
	if err := store.Save(group); err != nil {
		return err
	}
	return printMessages(cmd, success, messages)
}

func newServiceStopCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stop NAME",
		Short: "Stop a service group's running containers in reverse dependency order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.groupStore()
			if err != nil {
				return err
			}
			group, err := store.Get(args[0])
			if err != nil {
				return err
			}
			orch, err := a.orchestrator()
			if err != nil {
				return err
			}
			messages := orch.Stop(context.Background(), group)
			group.Status = domain.GroupStopped
			if err := store.Save(group); err != nil {
				return err
			}
			return printMessages(cmd, len(messages) == 0, messages)
		},
	}
}

func newServiceRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove NAME",
		Short: "Remove a service group's containers and networks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.groupStore()
			if err != nil {
				return err
			}
			group, err := store.Get(args[0])
			if err != nil {
				return err
			}
			orch, err := a.orchestrator()
			if err != nil {
				return err
			}
			messages := orch.Remove(context.Background(), group)
			group.Status = domain.GroupUnknown
			if err := store.Save(group); err != nil {
				return err
			}
			return printMessages(cmd, len(messages) == 0, messages)
		},
	}
}

func newServiceStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status NAME",
		Short: "Show the aggregate and per-container runtime status of a service group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.groupStore()
			if err != nil {
				return err
			}
			group, err := store.Get(args[0])
			if err != nil {
				return err
			}
			orch, err := a.orchestrator()
			if err != nil {
				return err
			}
			report, err := orch.Status(context.Background(), group)
			if err != nil {
				return err
			}
			return printResult(cmd, a, report, func() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", group.Name, report.Status)
				for _, info := range report.Containers {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s\t%s\t%s\n", info.Name, info.Status, info.Image)
				}
			})
		},
	}
}

func newServiceInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect NAME",
		Short: "Show a service group's full record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.groupStore()
			if err != nil {
				return err
			}
			group, err := store.Get(args[0])
			if err != nil {
				return err
			}
			return printResult(cmd, a, group, func() {
				fmt.Fprintf(cmd.OutOrStdout(), "%+v\n", group)
			})
		},
	}
}

func newServiceExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export NAME PATH",
		Short: "Export a service group's record to a YAML file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.groupStore()
			if err != nil {
				return err
			}
			group, err := store.Get(args[0])
			if err != nil {
				return err
			}
			data, err := yamlMarshal(group)
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[1], data, 0644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %q to %s\n", args[0], args[1])
			return nil
		},
	}
}

func newServiceImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import PATH",
		Short: "Import a service group record from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			group := &domain.ServiceGroup{}
			if err := yamlUnmarshal(data, group); err != nil {
				return err
			}
			if problems := group.Validate(); len(problems) > 0 {
				return printMessages(cmd, false, problems)
			}
			store, err := a.groupStore()
			if err != nil {
				return err
			}
			if err := store.Save(group); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported service group %q\n", group.Name)
			return nil
		},
	}
}
