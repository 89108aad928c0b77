package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/permscope/permscope/internal/utils"
	"github.com/permscope/permscope/pkg/salesforce"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "permscope",
	Short: "Compare Salesforce profile and permission set security settings.",
	Long: `permscope fetches profile and permission set metadata from a Salesforce org,
normalizes each into a canonical document, and reports a categorized diff of
object, field, system, apex, page, record type, tab and app permissions.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.permscope.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("proxy", "", "", "HTTP Proxy (Useful for debugging. Example: http://127.0.0.1:8080)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".permscope")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := home + "/.permscope.yaml"
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Printf("Error creating config file: %s", err)
			}
		}
	}

	// Set default empty values for all keys
	viper.SetDefault("salesforce.instance_url", "")
	viper.SetDefault("salesforce.access_token", "")
	viper.SetDefault("salesforce.api_version", salesforce.DefaultAPIVersion)

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	utils.SetLogLevel(levelString)
}

// newClient builds an API client from config. The OAuth dance is out of
// scope: users supply an instance URL and a valid access token (e.g. from
// `sf org display`).
func newClient() (*salesforce.Client, error) {
	instanceURL := viper.GetString("salesforce.instance_url")
	accessToken := viper.GetString("salesforce.access_token")
	if instanceURL == "" || accessToken == "" {
		return nil, errors.New("salesforce.instance_url and salesforce.access_token must be set in the config file")
	}
	proxy, _ := rootCmd.PersistentFlags().GetString("proxy")
	return salesforce.New(instanceURL, accessToken,
		salesforce.WithAPIVersion(viper.GetString("salesforce.api_version")),
		salesforce.WithProxy(proxy),
	), nil
}
