package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jean-pierre/jpc/internal/config"
)

var configKeyring bool

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "View or modify configuration",
	Long: `View the merged configuration or set a value in .jpc/config.toml.

Examples:
  jpc config                        Show all settings
  jpc config backend                Get a specific value
  jpc config backend gemini         Set a value
  jpc config api_key KEY --keyring  Store the API key in the OS keyring`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSession()
		if err != nil {
			return err
		}

		switch len(args) {
		case 0:
			return showConfig(cmd, s)
		case 1:
			return getConfigValue(cmd, s, args[0])
		default:
			return setConfigValue(cmd, s, args[0], args[1])
		}
	},
}

func init() {
	configCmd.Flags().BoolVar(&configKeyring, "keyring", false, "store api_key in the OS keyring instead of the config file")
	rootCmd.AddCommand(configCmd)
}

func showConfig(cmd *cobra.Command, s *session) error {
	v, err := config.Settings(s.paths, s.cwd)
	if err != nil {
		return err
	}
	keys := v.AllKeys()
	sort.Strings(keys)
	for _, key := range keys {
		value := v.Get(key)
		if key == "api_key" && value != "" {
			value = "********"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", key, value)
	}
	return nil
}

func getConfigValue(cmd *cobra.Command, s *session, key string) error {
	v, err := config.Settings(s.paths, s.cwd)
	if err != nil {
		return err
	}
	if !v.IsSet(key) {
		return fmt.Errorf("key not found: %s", key)
	}
	fmt.Fprintln(cmd.OutOrStdout(), v.Get(key))
	return nil
}

func setConfigValue(cmd *cobra.Command, s *session, key, value string) error {
	d := newDisplay(cmd)

	if configKeyring {
		if key != "api_key" {
			return fmt.Errorf("--keyring only applies to api_key")
		}
		if err := config.StoreAPIKey(s.cfg.Backend, value); err != nil {
			return err
		}
		d.Success(fmt.Sprintf("stored API key for %s in the keyring", s.cfg.Backend))
		return nil
	}

	if err := config.SetValue(s.paths.Local, key, value); err != nil {
		return err
	}
	d.Success(fmt.Sprintf("set %s in %s", key, s.paths.Local))
	return nil
}
