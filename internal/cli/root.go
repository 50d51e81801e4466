// Package cli defines the command-line interface for stackctl.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	awsconn "github.com/devgpu/stackctl/internal/aws"
	"github.com/devgpu/stackctl/internal/aws/cloudformation"
	"github.com/devgpu/stackctl/internal/aws/ec2"
	"github.com/devgpu/stackctl/internal/config"
	"github.com/devgpu/stackctl/internal/logging"
	"github.com/devgpu/stackctl/internal/stack"
)

const (
	// defaultConfigPath is the default path to the stackctl configuration file.
	defaultConfigPath = "stackctl.yaml"
)

// Options stores the CLI options for a single invocation.
type Options struct {
	ConfigPath string
	Action     string

	MyIP         string
	KeyName      string
	InstanceType string
	VolumeSize   int

	Region       string
	Profile      string
	Template     string
	PollInterval string
	Timeout      string
	ShowEvents   bool

	LogLevel logging.Level
}

// Execute builds the root command, runs it with the provided args and logger, and returns any error.
func Execute(args []string, logger *slog.Logger) error {
	if logger == nil {
		logger = logging.NewLogger(os.Stderr, logging.LevelInfo)
	}

	opts := &Options{
		ConfigPath: defaultConfigPath,
		LogLevel:   logging.LevelInfo,
	}

	rootCmd := newRootCommand(opts, logger)
	rootCmd.SetArgs(args)

	return rootCmd.Execute()
}

// newRootCommand constructs the root cobra.Command. The tool is a single
// entry point: the operation is selected with --action.
func newRootCommand(opts *Options, logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stackctl",
		Short: "stackctl manages the GPU development environment stack",
		Long: "stackctl creates, updates, inspects and deletes the CloudFormation stack " +
			"that provisions a single GPU development instance, waiting for the stack " +
			"to reach a terminal state.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if f := cmd.Flag("log-level"); f != nil && f.Changed {
				opts.LogLevel = logging.ParseLevel(f.Value.String())
				logger = logging.NewLogger(os.Stderr, opts.LogLevel)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), loggerKey{}, logger))
			logger.Debug("logger initialized", "level", slog.Level(opts.LogLevel))
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAction(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Action, "action", "", "Action to perform: create, update, status or delete")
	cmd.Flags().StringVar(&opts.MyIP, "my-ip", "", "CIDR block granted SSH access (bare IP becomes a /32)")
	cmd.Flags().StringVar(&opts.KeyName, "key-name", "", "EC2 key pair name for SSH access")
	cmd.Flags().StringVar(&opts.InstanceType, "instance-type", "", "Instance type override (e.g. g4dn.xlarge)")
	cmd.Flags().IntVar(&opts.VolumeSize, "volume-size", 0, "Root volume size override in GiB")

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", defaultConfigPath, "Path to stackctl configuration file")
	cmd.Flags().StringVar(&opts.Region, "region", "", "AWS region override")
	cmd.Flags().StringVar(&opts.Profile, "profile", "", "AWS shared config profile")
	cmd.Flags().StringVar(&opts.Template, "template", "", "Path to the infrastructure template")
	cmd.Flags().StringVar(&opts.PollInterval, "poll-interval", "", "Delay between status polls (e.g. 15s)")
	cmd.Flags().StringVar(&opts.Timeout, "timeout", "", "Maximum time to wait for a terminal state (e.g. 40m)")
	cmd.Flags().BoolVar(&opts.ShowEvents, "show-events", false, "Stream stack events while waiting")
	cmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	_ = cmd.MarkFlagRequired("action")

	return cmd
}

// runAction loads configuration, wires the AWS clients and dispatches on
// the requested action.
func runAction(cmd *cobra.Command, opts *Options) error {
	if err := validateAction(opts.Action); err != nil {
		return err
	}

	ctx := cmd.Context()
	logger := LoggerFromContext(ctx)

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	applyOverrides(cfg, opts)

	interval, err := resolvePollInterval(cfg, opts.PollInterval, cmd.Flags().Changed("poll-interval"))
	if err != nil {
		return err
	}
	budget, err := resolveWaitTimeout(cfg, opts.Timeout, cmd.Flags().Changed("timeout"))
	if err != nil {
		return err
	}

	awsCfg, err := awsconn.LoadConfig(ctx, cfg.Profile, cfg.Region)
	if err != nil {
		return err
	}
	if account := awsconn.GetAccountID(ctx, awsCfg); account != "" {
		logger.Debug("resolved AWS identity", "account", account, "region", cfg.Region)
	}

	cfnClient := cloudformation.NewFromConfig(awsCfg)
	ec2Client := ec2.NewFromConfig(awsCfg)

	templateBody := ""
	if opts.Action == "create" || opts.Action == "update" {
		templateBody, err = cfg.ReadTemplate()
		if err != nil {
			return err
		}
	}

	ctrl, err := stack.NewController(cfnClient, ec2Client, stack.ControllerOptions{
		StackName:    cfg.StackName,
		TemplateBody: templateBody,
		SSHUser:      cfg.SSHUser,
		PollInterval: interval,
		WaitBudget:   budget,
		ShowEvents:   cfg.ShowEvents,
		Progress:     cmd.OutOrStdout(),
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	params := stack.Parameters{
		MyIP:         opts.MyIP,
		KeyName:      opts.KeyName,
		InstanceType: opts.InstanceType,
		VolumeSize:   opts.VolumeSize,
	}

	switch opts.Action {
	case "create":
		return runCreate(ctx, cmd.OutOrStdout(), ctrl, cfnClient, templateBody, params)
	case "update":
		return runUpdate(ctx, cmd.OutOrStdout(), ctrl, params)
	case "status":
		return runStatus(ctx, cmd.OutOrStdout(), ctrl)
	case "delete":
		return runDelete(ctx, cmd.OutOrStdout(), ctrl)
	default:
		return validateAction(opts.Action)
	}
}

// validateAction rejects unknown actions before any configuration or
// provider calls happen.
func validateAction(action string) error {
	switch action {
	case "create", "update", "status", "delete":
		return nil
	default:
		return fmt.Errorf("unknown action %q, expected create, update, status or delete", action)
	}
}

// applyOverrides layers explicit flag values over the loaded configuration.
func applyOverrides(cfg *config.Config, opts *Options) {
	if opts.Region != "" {
		cfg.Region = opts.Region
	}
	if opts.Profile != "" {
		cfg.Profile = opts.Profile
	}
	if opts.Template != "" {
		cfg.Template = opts.Template
	}
	if opts.ShowEvents {
		cfg.ShowEvents = true
	}
}

// loggerKey is a private context key used to store a logger in command contexts.
type loggerKey struct{}

// LoggerFromContext extracts a logger from the context or falls back to a default logger.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return logging.NewLogger(os.Stderr, logging.LevelInfo)
	}
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return logging.NewLogger(os.Stderr, logging.LevelInfo)
}
