package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/emrgen/headline"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	configFileName = "headline"
	configDir      = "./.tmp"
	defaultServer  = "http://localhost:4021"
)

// ServerAddr is set by --server and wins over the saved context.
var ServerAddr string

var contextCommand = &cobra.Command{
	Use:   "context",
	Short: "context commands",
}

func init() {
	contextCommand.AddCommand(setContextCommand())
	contextCommand.AddCommand(currentContextCommand())
	contextCommand.AddCommand(resetContextCommand())
}

type Context struct {
	Server string `json:"server" mapstructure:"server"`
}

// saves the context info to the config file in ./.tmp
func setContextCommand() *cobra.Command {
	var server string
	command := &cobra.Command{
		Use:   "set",
		Short: "set context",
		Run: func(cmd *cobra.Command, args []string) {
			if server == "" {
				color.Red(`missing: --address`)
				return
			}

			if err := writeContext(Context{Server: server}); err != nil {
				fmt.Println("error writing config file: ", err)
				return
			}
			fmt.Println("context saved")
		},
	}

	command.Flags().StringVarP(&server, "address", "a", "", "server http address, e.g. http://localhost:4021")

	return command
}

func currentContextCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "current",
		Short: "current context",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := readContext()
			if ctx.Server == "" {
				color.Yellow("no context saved, using %s", defaultServer)
				return
			}
			printField("Server", ctx.Server)
		},
	}

	return command
}

func resetContextCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "reset",
		Short: "reset context",
		Run: func(cmd *cobra.Command, args []string) {
			if err := writeContext(Context{}); err != nil {
				fmt.Println("error writing config file: ", err)
				return
			}
			fmt.Println("context reset")
		},
	}

	return command
}

func contextFile() string {
	return filepath.Join(configDir, configFileName+".yml")
}

func writeContext(context Context) error {
	if err := ensureContextFile(); err != nil {
		return err
	}

	viper.SetConfigName(configFileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("yml")
	viper.Set("context", map[string]string{"server": context.Server})

	return viper.WriteConfig()
}

func readContext() Context {
	var ctx Context

	if err := ensureContextFile(); err != nil {
		fmt.Println("error creating config file: ", err)
		return ctx
	}

	viper.SetConfigName(configFileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("yml")

	if err := viper.ReadInConfig(); err != nil {
		fmt.Println("error reading config file: ", err)
	}

	if err := viper.UnmarshalKey("context", &ctx); err != nil {
		fmt.Println("error unmarshalling config file: ", err)
	}

	return ctx
}

// create file if it doesn't exist
func ensureContextFile() error {
	if _, err := os.Stat(contextFile()); !os.IsNotExist(err) {
		return err
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return err
	}
	file, err := os.Create(contextFile())
	if err != nil {
		return err
	}

	return file.Close()
}

// serverAddr resolves the server address: flag, then saved context, then default.
func serverAddr() string {
	if ServerAddr != "" {
		return ServerAddr
	}
	if ctx := readContext(); ctx.Server != "" {
		return ctx.Server
	}
	return defaultServer
}

func newClient() headline.Client {
	return headline.NewClient(serverAddr())
}
