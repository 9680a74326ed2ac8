package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateEnvironment(); err != nil {
		return err
	}
	if err := c.validateTasks(); err != nil {
		return err
	}
	if err := c.validateScrape(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateEnvironment() error {
	env := c.Environment
	if env.PauseSeconds < 0 {
		return fmt.Errorf("environment.pause_seconds must be >= 0, got %d", env.PauseSeconds)
	}
	if env.ContainerPort < 1 || env.ContainerPort > 65535 {
		return fmt.Errorf("environment.container_port %d out of range (1-65535)", env.ContainerPort)
	}
	if env.HostPortBase < 1024 || env.HostPortBase > 65535 {
		return fmt.Errorf("environment.host_port_base %d out of range (1024-65535)", env.HostPortBase)
	}
	return nil
}

func (c *Config) validateTasks() error {
	for name, commands := range c.Tasks {
		if strings.TrimSpace(name) == "" {
			return errors.New("tasks: task name must not be empty")
		}
		if len(commands) == 0 {
			return fmt.Errorf("tasks.%s: at least one command is required", name)
		}
		for _, command := range commands {
			if strings.TrimSpace(command) == "" {
				return fmt.Errorf("tasks.%s: empty command", name)
			}
		}
	}
	return nil
}

func (c *Config) validateScrape() error {
	s := c.Scrape
	if s.SleepInterval < 0 || s.MaxSleepInterval < 0 {
		return errors.New("scrape: sleep intervals must be >= 0")
	}
	if s.MaxSleepInterval > 0 && s.MaxSleepInterval < s.SleepInterval {
		return fmt.Errorf("scrape.max_sleep_interval (%v) must be >= scrape.sleep_interval (%v)",
			s.MaxSleepInterval, s.SleepInterval)
	}
	seen := make(map[string]bool, len(s.Sites))
	for i, site := range s.Sites {
		if site.Name == "" {
			return fmt.Errorf("scrape.sites[%d]: name is required", i)
		}
		key := strings.ToLower(site.Name)
		if seen[key] {
			return fmt.Errorf("scrape.sites: duplicate site name %q", site.Name)
		}
		seen[key] = true
		if site.Domain == "" {
			return fmt.Errorf("scrape.sites.%s: domain is required", site.Name)
		}
		if site.Pattern == "" {
			return fmt.Errorf("scrape.sites.%s: pattern is required", site.Name)
		}
		if _, err := regexp.Compile(site.Pattern); err != nil {
			return fmt.Errorf("scrape.sites.%s: invalid pattern: %w", site.Name, err)
		}
	}
	return nil
}
