package cli

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/hostdeck/internal/config"
	"github.com/rileyhilliard/hostdeck/internal/errors"
	"github.com/rileyhilliard/hostdeck/internal/ui"
)

// initCheckTimeout bounds the health check made before saving.
const initCheckTimeout = 5 * time.Second

// InitOptions holds options for the init command.
type InitOptions struct {
	URL            string // Pre-specified controller URL
	SSH            string // Pre-specified SSH host to tunnel through
	Dir            string // Where to write the file; defaults to cwd
	Overwrite      bool   // Overwrite existing config without asking
	NonInteractive bool   // Skip prompts and the connection check
}

var initOpts InitOptions

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .hostdeck.yaml configuration",
	Long: `Create a .hostdeck.yaml file in the current directory.

Asks for the controller URL and an optional SSH host to tunnel through,
checks the controller answers, then writes the file with defaults for
everything else.

Examples:
  hostdeck init
  hostdeck init --url https://nas.local:8443
  hostdeck init --url http://127.0.0.1:8443 --ssh admin@nas --non-interactive`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationNoConfig: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := initOpts
		if !isInteractive() {
			opts.NonInteractive = true
		}
		return Init(cmd.Context(), cmd.OutOrStdout(), opts)
	},
}

func init() {
	initCmd.Flags().StringVar(&initOpts.URL, "url", "", "controller URL")
	initCmd.Flags().StringVar(&initOpts.SSH, "ssh", "", "SSH host to tunnel through (user@host[:port] or alias)")
	initCmd.Flags().BoolVarP(&initOpts.Overwrite, "force", "f", false, "overwrite existing config")
	initCmd.Flags().BoolVar(&initOpts.NonInteractive, "non-interactive", false, "don't prompt; use flags and defaults")
}

// Init writes a new .hostdeck.yaml.
func Init(ctx context.Context, w io.Writer, opts InitOptions) error {
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	configPath := filepath.Join(dir, config.ConfigFileName)

	if _, err := os.Stat(configPath); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", configPath),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", config.ConfigFileName)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Fprintln(w, "Cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	controllerURL := opts.URL
	if controllerURL == "" {
		controllerURL = cfg.Controller.URL
	}
	sshHost := opts.SSH

	if !opts.NonInteractive {
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Controller URL").
					Description("Where the host controller listens").
					Placeholder("http://localhost:8443").
					Value(&controllerURL).
					Validate(validateControllerURL),
			),
			huh.NewGroup(
				huh.NewInput().
					Title("SSH tunnel host (optional)").
					Description("Reach the controller through this SSH host; the URL is then dialed from there").
					Placeholder("admin@nas or an ssh config alias (leave empty to connect directly)").
					Value(&sshHost),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Check terminal compatibility or use --non-interactive flag")
		}
	}

	cfg.Controller.URL = strings.TrimRight(strings.TrimSpace(controllerURL), "/")
	cfg.Controller.SSH = strings.TrimSpace(sshHost)
	if err := config.Validate(cfg); err != nil {
		return err
	}

	if !opts.NonInteractive {
		if err := checkController(ctx, w, cfg); err != nil {
			return err
		}
	}

	if err := config.Write(configPath, cfg, true); err != nil {
		return err
	}

	fmt.Fprintf(w, "%s Created %s\n\n", ui.SuccessStyle().Render(ui.SymbolSuccess), configPath)
	fmt.Fprintln(w, "Next steps:")
	fmt.Fprintln(w, "  hostdeck status     - Check the controller answers")
	fmt.Fprintln(w, "  hostdeck services   - List services")
	fmt.Fprintln(w, "  hostdeck monitor    - Watch live stats")
	return nil
}

// checkController checks the health endpoint and, on failure, offers to
// save the config anyway.
func checkController(ctx context.Context, w io.Writer, cfg *config.Config) error {
	fmt.Fprintln(w)
	spinner := ui.NewSpinner(w, "Checking "+cfg.Controller.URL)
	spinner.Start()

	checkCtx, cancel := context.WithTimeout(ctx, initCheckTimeout)
	defer cancel()

	err := withCheckSession(checkCtx, cfg)
	if err == nil {
		spinner.Success()
		fmt.Fprintln(w)
		return nil
	}
	spinner.Fail()

	fmt.Fprintf(w, "\n%s Controller at '%s' didn't answer: %v\n\n", ui.SymbolFail, cfg.Controller.URL, err)

	var saveAnyway bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save config anyway? (You can start the controller later)").
				Value(&saveAnyway),
		),
	)
	if formErr := form.Run(); formErr != nil || !saveAnyway {
		return errors.WrapWithCode(err, errors.ErrTransport,
			fmt.Sprintf("Controller at '%s' didn't answer", cfg.Controller.URL),
			"Start one locally with 'hostdeck dev-controller', or fix the URL")
	}
	return nil
}

func withCheckSession(ctx context.Context, cfg *config.Config) error {
	s, err := openSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()
	_, err = s.client.Health(ctx)
	return err
}

func validateControllerURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("enter an http:// or https:// URL with a host")
	}
	return nil
}
