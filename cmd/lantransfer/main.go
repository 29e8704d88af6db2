package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mozhi-it/LAN-Transfer/internal/cli"
	"github.com/mozhi-it/LAN-Transfer/internal/config"
)

var (
	version = "0.1.0"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "lantransfer",
	Short: "LAN Transfer - share files and chat on the local network",
	Long: `LAN Transfer is a terminal client for a LAN file-sharing server.

Run without arguments to start the interactive client. When no server
address is configured you are asked for one at startup.

Examples:
  lantransfer                          # Start the interactive client
  lantransfer -s 192.168.1.20          # Connect to a server (port 5000)
  lantransfer files documents          # List one category
  lantransfer files -m '*.pdf'         # List matching files
  lantransfer upload report.pdf        # Upload a file
  lantransfer download images cat.png  # Download a file
  lantransfer send "lunch?" -u alice   # Post a chat message
  lantransfer files -o json --query '[].name'
  lantransfer serve --listen :5000     # Run the server`,
	Version:       version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var filesCmd = &cobra.Command{
	Use:   "files [category]",
	Short: "List remote files, all categories by default",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		category := ""
		if len(args) > 0 {
			category = args[0]
		}
		return withRunner(cmd, func(a *app, r *cli.Runner) error {
			return r.Files(cmd.Context(), category)
		})
	},
}

var uploadCmd = &cobra.Command{
	Use:   "upload <file>...",
	Short: "Upload local files; the server picks the category",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(cmd, func(a *app, r *cli.Runner) error {
			return r.Upload(cmd.Context(), args)
		})
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download [category] [name]",
	Short: "Download a remote file into the download directory",
	Long: `Download a remote file into download.dir.

Without arguments on a terminal, the category and file are picked from a list.`,
	Args: cobra.RangeArgs(0, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(cmd, func(a *app, r *cli.Runner) error {
			if len(args) == 2 {
				return r.Download(cmd.Context(), args[0], args[1])
			}
			if len(args) == 1 || !cli.IsInteractive() {
				return fmt.Errorf("download needs a category and a file name")
			}
			category, name, err := r.PickRemoteFile(cmd.Context())
			if err != nil {
				return err
			}
			return r.Download(cmd.Context(), string(category), name)
		})
	},
}

var rmCmd = &cobra.Command{
	Use:     "rm <category> <name>...",
	Aliases: []string{"delete"},
	Short:   "Delete remote files",
	Args:    cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(cmd, func(a *app, r *cli.Runner) error {
			return r.Remove(cmd.Context(), args[0], args[1:])
		})
	},
}

var sendCmd = &cobra.Command{
	Use:   "send <message>...",
	Short: "Post a chat message",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(cmd, func(a *app, r *cli.Runner) error {
			return r.Send(cmd.Context(), strings.Join(args, " "))
		})
	},
}

var messagesCmd = &cobra.Command{
	Use:   "messages",
	Short: "Show recent chat messages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(cmd, func(a *app, r *cli.Runner) error {
			return r.Messages(cmd.Context(), flagMessageLimit)
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show file counts per category",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(cmd, func(a *app, r *cli.Runner) error {
			return r.Stats(cmd.Context())
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the local transfer history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(cmd, func(a *app, r *cli.Runner) error {
			server := ""
			if flagHistoryServer != "" {
				addr, err := config.ParseAddress(flagHistoryServer)
				if err != nil {
					return err
				}
				server = addr
			}
			return r.History(flagHistoryLimit, server)
		})
	},
}

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Print the effective key bindings as a config snippet",
	Long: `Print the key bindings of the interactive client, defaults merged with the
"keys" section of the configuration, in the layout that section uses.
Risky overrides are reported on stderr.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runKeys(cmd)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the LAN Transfer server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

// Flags shared by the client commands
var (
	flagOutput  string
	flagFilter  string
	flagQuery   string
	flagMatch   string
	flagNoColor bool
	flagYes     bool

	flagMessageLimit  int
	flagHistoryLimit  int
	flagHistoryServer string
	flagHistoryClear  bool
)

func init() {
	// Assigned here rather than in the literal: runTUI reaches rootCmd, which
	// would otherwise form an initialization cycle.
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd)
	}

	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/lantransfer/config.yaml)")
	rootCmd.PersistentFlags().StringP("server", "s", "", "server address, host[:port]")
	rootCmd.PersistentFlags().StringP("user", "u", "", "sender name for chat messages")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug/info/warn/error)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("server.address", rootCmd.PersistentFlags().Lookup("server"))
	_ = viper.BindPFlag("user.name", rootCmd.PersistentFlags().Lookup("user"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))

	for _, c := range []*cobra.Command{filesCmd, uploadCmd, downloadCmd, rmCmd, sendCmd, messagesCmd, statsCmd, historyCmd} {
		c.Flags().StringVarP(&flagOutput, "output", "o", "", "Output format (text/json/yaml)")
		c.Flags().StringVar(&flagFilter, "filter", "", "JMESPath filter applied to the JSON output")
		c.Flags().StringVar(&flagQuery, "query", "", "JMESPath query or $(shell command) applied after the filter")
		c.Flags().BoolVar(&flagNoColor, "no-color", false, "Disable colors and JSON highlighting")
	}

	filesCmd.Flags().StringVarP(&flagMatch, "match", "m", "", "Only files whose name matches a glob, e.g. '*.pdf'")
	for _, c := range []*cobra.Command{rmCmd, historyCmd} {
		c.Flags().BoolVarP(&flagYes, "yes", "y", false, "Do not ask for confirmation")
	}
	messagesCmd.Flags().IntVarP(&flagMessageLimit, "limit", "n", 0, "Show only the last n messages")
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "Number of entries to show (0 for all)")
	historyCmd.Flags().StringVar(&flagHistoryServer, "for", "", "Only transfers with this server address")
	historyCmd.Flags().BoolVar(&flagHistoryClear, "clear", false, "Delete the whole history")

	serveCmd.Flags().String("listen", "", "listen address (default :5000)")
	serveCmd.Flags().String("upload-dir", "", "directory for stored files (default uploads)")
	_ = viper.BindPFlag("serve.listen", serveCmd.Flags().Lookup("listen"))
	_ = viper.BindPFlag("serve.upload_dir", serveCmd.Flags().Lookup("upload-dir"))

	rootCmd.AddCommand(filesCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(messagesCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(serveCmd)
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.Dir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("LANTRANSFER")
	// LANTRANSFER_SERVER_ADDRESS for server.address
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
