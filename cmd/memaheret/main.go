// Command memaheret plays the daily word in a terminal and checks word lists.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile string
	version = "dev"
	log     = zap.NewNop().Sugar()
	rootCmd = &cobra.Command{
		Use:   "memaheret",
		Short: "ממהרת: the daily Hebrew five-letter word",
		Long: `memaheret plays the daily Hebrew five-letter word in a terminal.

Progress is kept in the same device store the web server uses, so a round
can be continued after quitting. A new word is chosen at midnight,
Jerusalem time.`,
		PersistentPreRunE: initConfig,
		SilenceUsage:      true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/memaheret/config.yaml)")
	rootCmd.PersistentFlags().String("words", "data/words.json", "word list file")
	rootCmd.PersistentFlags().String("store", "file", "device store backend (memory, file, sqlite)")
	rootCmd.PersistentFlags().String("data-dir", defaultDataDir(), "directory for the device store")
	rootCmd.PersistentFlags().String("device", "", "device ID (default: derived from the current user)")
	rootCmd.PersistentFlags().Bool("verbose", false, "log storage problems to stderr")

	_ = viper.BindPFlag("words", rootCmd.PersistentFlags().Lookup("words"))
	_ = viper.BindPFlag("store", rootCmd.PersistentFlags().Lookup("store"))
	_ = viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	_ = viper.BindPFlag("device", rootCmd.PersistentFlags().Lookup("device"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(todayCmd())
	rootCmd.AddCommand(playCmd())
	rootCmd.AddCommand(shareCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(checkWordsCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	_ = log.Sync()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home + "/.config/memaheret")
		}
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("MEMAHERET")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	if viper.GetBool("verbose") {
		l, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("failed to set up logging: %w", err)
		}
		log = l.Sugar()
	}
	return nil
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir + "/memaheret"
	}
	return "data"
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "memaheret %s\n", version)
		},
	}
}
