package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/artpar/smoothstack/internal/core/domain"
	"github.com/artpar/smoothstack/internal/core/netplan"
)

func newNetworkCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "network",
		Short: "Manage networks",
	}

	cmd.AddCommand(
		newNetworkListCmd(a),
		newNetworkCreateCmd(a),
		newNetworkDeleteCmd(a),
		newNetworkInspectCmd(a),
		newNetworkConnectCmd(a),
		newNetworkDisconnectCmd(a),
		newNetworkCheckCmd(a),
		newNetworkTemplateCmd(a),
	)
	return cmd
}

func newNetworkListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List networks known to the container engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := a.network()
			if err != nil {
				return err
			}
			networks, err := mgr.List()
			if err != nil {
				return err
			}
			return printResult(cmd, a, networks, func() {
				for _, n := range networks {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", n.Name, n.Driver, n.Subnet)
				}
			})
		},
	}
}

func newNetworkCreateCmd(a *app) *cobra.Command {
	var templateName, name, driver, subnet, gateway string

	c := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a network, optionally from a named template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name = args[0]
			var tmpl domain.NetworkTemplate
			if templateName != "" {
				store, err := a.templateStore()
				if err != nil {
					return err
				}
				tmpl, err = store.GetNetworkTemplate(templateName)
				if err != nil {
					return err
				}
			} else {
				tmpl = domain.NetworkTemplate{Name: name, Driver: driver}
			}

			mgr, err := a.network()
			if err != nil {
				return err
			}
			id, err := mgr.Create(tmpl, netplan.Overrides{Name: name, Driver: driver, Subnet: subnet, Gateway: gateway})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "network %q created as %s\n", name, id)
			return nil
		},
	}
	c.Flags().StringVar(&templateName, "template", "", "network template to create from")
	c.Flags().StringVar(&driver, "driver", "bridge", "network driver")
	c.Flags().StringVar(&subnet, "subnet", "", "subnet override")
	c.Flags().StringVar(&gateway, "gateway", "", "gateway override")
	return c
}

func newNetworkDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID_OR_NAME",
		Short: "Delete a network",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := a.network()
			if err != nil {
				return err
			}
			if err := mgr.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "network %q deleted\n", args[0])
			return nil
		},
	}
}

func newNetworkInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect NAME",
		Short: "Show a network's connected endpoints",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := a.network()
			if err != nil {
				return err
			}
			detail, err := mgr.Inspect(args[0])
			if err != nil {
				return err
			}
			return printResult(cmd, a, detail, func() {
				fmt.Fprintf(cmd.OutOrStdout(), "%+v\n", detail)
			})
		},
	}
}

func newNetworkConnectCmd(a *app) *cobra.Command {
	var aliases []string
	c := &cobra.Command{
		Use:   "connect NETWORK CONTAINER",
		Short: "Connect a container to a network",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := a.network()
			if err != nil {
				return err
			}
			if err := mgr.Attach(args[0], args[1], aliases); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "connected %s to %s\n", args[1], args[0])
			return nil
		},
	}
	c.Flags().StringSliceVar(&aliases, "alias", nil, "network aliases for the container")
	return c
}

func newNetworkDisconnectCmd(a *app) *cobra.Command {
	var force bool
	c := &cobra.Command{
		Use:   "disconnect NETWORK CONTAINER",
		Short: "Disconnect a container from a network",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := a.network()
			if err != nil {
				return err
			}
			if err := mgr.Detach(args[0], args[1], force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "disconnected %s from %s\n", args[1], args[0])
			return nil
		},
	}
	c.Flags().BoolVar(&force, "force", false, "force disconnect")
	return c
}

func newNetworkCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check SOURCE_CONTAINER TARGET_CONTAINER",
		Short: "Probe reachability of a target container from a source container",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := a.network()
			if err != nil {
				return err
			}
			result, err := mgr.Probe(context.Background(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s reachable from %s via %s (%s)\n", args[1], args[0], result.Network, result.IPv4)
			return nil
		},
	}
}

func newNetworkTemplateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Manage network templates",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List network templates",
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := a.templateStore()
				if err != nil {
					return err
				}
				templates, err := store.ListNetworkTemplates()
				if err != nil {
					return err
				}
				return printResult(cmd, a, templates, func() {
					for _, t := range templates {
						fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", t.Name, t.Driver)
					}
				})
			},
		},
		&cobra.Command{
			Use:   "show NAME",
			Short: "Show a network template",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := a.templateStore()
				if err != nil {
					return err
				}
				tmpl, err := store.GetNetworkTemplate(args[0])
				if err != nil {
					return err
				}
				return printResult(cmd, a, tmpl, func() {
					fmt.Fprintf(cmd.OutOrStdout(), "%+v\n", tmpl)
				})
			},
		},
		newNetworkTemplateCreateCmd(a),
		&cobra.Command{
			Use:   "delete NAME",
			Short: "Delete a user-defined network template",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := a.templateStore()
				if err != nil {
					return err
				}
				if err := store.DeleteNetworkTemplate(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "network template %q deleted\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "export NAME PATH",
			Short: "Export a network template to a YAML file",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := a.templateStore()
				if err != nil {
					return err
				}
				tmpl, err := store.GetNetworkTemplate(args[0])
				if err != nil {
					return err
				}
				data, err := yamlMarshal(tmpl)
				if err != nil {
					return err
				}
				return os.WriteFile(args[1], data, 0644)
			},
		},
		&cobra.Command{
			Use:   "import PATH",
			Short: "Import a network template from a YAML file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return err
				}
				var tmpl domain.NetworkTemplate
				if err := yamlUnmarshal(data, &tmpl); err != nil {
					return err
				}
				store, err := a.templateStore()
				if err != nil {
					return err
				}
				if err := store.SaveNetworkTemplate(tmpl); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported network template %q\n", tmpl.Name)
				return nil
			},
		},
	)
	return cmd
}

func newNetworkTemplateCreateCmd(a *app) *cobra.Command {
	var driver, subnet, gateway, description string
	var internal bool

	c := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a network template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl := domain.NetworkTemplate{
				Name: args[0], Description: description, Driver: driver,
				Subnet: subnet, Gateway: gateway, Internal: internal,
			}
			store, err := a.templateStore()
			if err != nil {
				return err
			}
			if err := store.SaveNetworkTemplate(tmpl); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "network template %q created\n", tmpl.Name)
			return nil
		},
	}
	c.Flags().StringVar(&driver, "driver", "bridge", "network driver")
	c.Flags().StringVar(&subnet, "subnet", "", "subnet")
	c.Flags().StringVar(&gateway, "gateway", "", "gateway")
	c.Flags().StringVar(&description, "description", "", "description")
	c.Flags().BoolVar(&internal, "internal", false, "internal network (no external routing)")
	return c
}
