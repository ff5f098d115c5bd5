package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/artpar/smoothstack/internal/core/domain"
	"github.com/artpar/smoothstack/internal/shell/devenv"
)

func newDevCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Manage development environments and their templates",
	}
	cmd.AddCommand(
		newDevListCmd(a),
		newDevInfoCmd(a),
		newDevCreateCmd(a),
		newDevCreateTemplateCmd(a),
		newDevDeleteCmd(a),
		newDevExportCmd(a),
		newDevImportCmd(a),
	)
	return cmd
}

func newDevListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List dev-environment templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := a.devenv()
			if err != nil {
				return err
			}
			templates, err := mgr.List()
			if err != nil {
				return err
			}
			return printResult(cmd, a, templates, func() {
				for _, t := range templates {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", t.Name, t.EnvType, t.Image)
				}
			})
		},
	}
}

func newDevInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info NAME",
		Short: "Show a dev-environment template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := a.devenv()
			if err != nil {
				return err
			}
			tmpl, err := mgr.Get(args[0])
			if err != nil {
				return err
			}
			return printResult(cmd, a, tmpl, func() {
				fmt.Fprintf(cmd.OutOrStdout(), "%+v\n", tmpl)
			})
		},
	}
}

func newDevCreateCmd(a *app) *cobra.Command {
	var projectDir, remoteUser string
	var noStart, noManifest, pullImage bool
	var env map[string]string

	c := &cobra.Command{
		Use:   "create TEMPLATE CONTAINER_NAME",
		Short: "Instantiate a dev environment from a template",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := a.devenv()
			if err != nil {
				return err
			}
			opts := devenv.DefaultCreateOptions()
			opts.StartContainer = !noStart
			opts.CreateEditorMetadata = !noManifest
			opts.PullImage = pullImage
			opts.Environment = env
			opts.RemoteUser = remoteUser

			success, message := mgr.Create(args[0], args[1], projectDir, opts)
			fmt.Fprintln(cmd.OutOrStdout(), message)
			if !success {
				return fmt.Errorf("dev environment creation failed")
			}
			return nil
		},
	}
	c.Flags().StringVar(&projectDir, "project-dir", ".", "project directory (used for ${workspaceFolder} expansion)")
	c.Flags().StringVar(&remoteUser, "remote-user", "", "editor metadata remote user")
	c.Flags().BoolVar(&noStart, "no-start", false, "only emit editor metadata, do not start a container")
	c.Flags().BoolVar(&noManifest, "no-manifest", false, "do not emit .devcontainer/devcontainer.json")
	c.Flags().BoolVar(&pullImage, "pull", false, "pull the template's image before starting")
	c.Flags().StringToStringVar(&env, "env", nil, "extra environment variables (KEY=VALUE), override template")
	return c
}

func newDevCreateTemplateCmd(a *app) *cobra.Command {
	var envType, image, description, workingDir string

	c := &cobra.Command{
		Use:   "create-template NAME",
		Short: "Create a dev-environment template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.templateStore()
			if err != nil {
				return err
			}
			tmpl := domain.DevEnvironmentTemplate{
				Name: args[0], EnvType: domain.EnvironmentType(envType), Image: image,
				Description: description, WorkingDir: workingDir,
			}
			if err := store.SaveDevEnvironmentTemplate(tmpl); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "dev-environment template %q created\n", tmpl.Name)
			return nil
		},
	}
	c.Flags().StringVar(&envType, "env-type", string(domain.EnvTypeCustom), "python, nodejs, fullstack, database, custom")
	c.Flags().StringVar(&image, "image", "", "container image")
	c.Flags().StringVar(&description, "description", "", "description")
	c.Flags().StringVar(&workingDir, "working-dir", "", "working directory inside the container")
	return c
}

func newDevDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a user-defined dev-environment template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := a.devenv()
			if err != nil {
				return err
			}
			if err := mgr.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "dev-environment template %q deleted\n", args[0])
			return nil
		},
	}
}

func newDevExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export NAME PATH",
		Short: "Export a dev-environment template to a YAML file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := a.devenv()
			if err != nil {
				return err
			}
			if err := mgr.Export(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %q to %s\n", args[0], args[1])
			return nil
		},
	}
}

func newDevImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import PATH",
		Short: "Import a dev-environment template from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := a.devenv()
			if err != nil {
				return err
			}
			tmpl, err := mgr.Import(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported dev-environment template %q\n", tmpl.Name)
			return nil
		},
	}
}
