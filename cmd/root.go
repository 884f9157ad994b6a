package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "headline",
	Short: "headline management tool",
	Example: `headline serve
headline db migrate
headline db seed -n 30
headline categories
headline create -t <title> -c <category> -f <forward-ref-id> -b <backward-ref-id>
headline get -i <id>
headline list -c sound-cd,book-paper
headline update -i <id> -t <title> --clear-description
headline delete -i <id>
headline watch`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(contextCommand)
	rootCmd.AddCommand(healthCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})

	rootCmd.PersistentFlags().StringVarP(&ServerAddr, "server", "s", "", "server http address, overrides the saved context")

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	cobra.EnableCommandSorting = false
}
