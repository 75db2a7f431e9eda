package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/Jagadesh-1811/vyomarr-sub002/internal/api"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/config"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/content"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/daemonctl"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/itemaccess"
	"github.com/Jagadesh-1811/vyomarr-sub002/internal/logging"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

func (c *commandContext) apiClient() (*api.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return api.NewClient(cfg.Paths.APIBind, cfg.Paths.APIToken), nil
}

func (c *commandContext) launchOptions() daemonctl.LaunchOptions {
	return daemonctl.LaunchOptions{ConfigPath: c.configPath}
}

// withItems runs fn against the daemon API, or the database when no daemon is listening.
func (c *commandContext) withItems(cmd *cobra.Command, fn func(itemaccess.Session) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	client, err := c.apiClient()
	if err != nil {
		return err
	}
	session, err := itemaccess.OpenWithFallback(cmd.Context(), client, itemaccess.StoreOpener(
		func() (*content.Store, error) { return content.Open(cfg) },
		func(store *content.Store) itemaccess.Access {
			return itemaccess.NewStoreAccess(store, directLogger(cfg), nil)
		},
	))
	if err != nil {
		return err
	}
	defer session.Close()
	return fn(session)
}

// directLogger reports warnings from in-process commands on stderr.
func directLogger(cfg *config.Config) *slog.Logger {
	logger, err := logging.New(logging.Options{
		Level:       "warn",
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return logging.NewNop()
	}
	return logger
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
