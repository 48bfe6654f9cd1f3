// b64pdf converts Base64 text into PDF files, and files into Base64 text.
//
// Usage:
//
//	b64pdf convert [flags] [file]
//	b64pdf encode [flags] <file>
//	b64pdf shell
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/briandowns/spinner"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	b64pdf "github.com/porticus-lab/go-b64pdf"
	"github.com/porticus-lab/go-b64pdf/internal/config"
	"github.com/porticus-lab/go-b64pdf/internal/observability"
)

var version = "dev"

var (
	// Global flags
	cfgFile    string
	outputJSON bool
	verbose    bool

	// Configuration and logger
	cfg    *config.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "b64pdf",
	Short: "Convert Base64 text to PDF files and back",
	Long: `b64pdf turns a Base64 payload into a downloadable PDF.

The payload may be bare Base64, a data URI, a JSON document carrying it in a
known field, or any text with a long Base64 run inside. Nothing leaves the
machine: downloads are written locally, optionally through headless Chrome.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load() // Ignore error if .env doesn't exist

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logFormat := cfg.Observability.LogFormat
		if outputJSON {
			logFormat = "json"
		}
		level := cfg.Observability.LogLevel
		if verbose {
			level = "debug"
		}

		logger = observability.NewLogger(observability.LogConfig{
			Level:       level,
			Format:      logFormat,
			Output:      os.Stderr,
			ServiceName: "b64pdf",
		})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: uses env vars)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "log in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newConvertCmd())
	rootCmd.AddCommand(newEncodeCmd())
	rootCmd.AddCommand(newShellCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newConvertCmd creates the convert subcommand.
func newConvertCmd() *cobra.Command {
	var (
		text       string
		name       string
		outDir     string
		useBrowser bool
	)

	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "Decode Base64 input into a PDF file",
		Long: `Decode Base64 input into a PDF file.

Input comes from --text, from a .txt/.json/.xml file argument, or from
stdin when neither is given. The output name defaults to the input file's
base name, or to the configured default name.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if cmd.Flags().Changed("out") {
				cfg.Output.Dir = outDir
			}
			if cmd.Flags().Changed("browser") {
				cfg.Browser.Enabled = useBrowser
			}

			dl, closeDl, err := openDownloader(cfg)
			if err != nil {
				return err
			}
			defer closeDl()

			m := newManager(dl)
			defer m.Close(context.Background())

			m.SetFileName(name)
			switch {
			case text != "":
				m.SetInput(text)
			case len(args) == 1:
				if !b64pdf.IsTextFile(args[0]) {
					return fmt.Errorf("%s is not a .txt, .json or .xml file; use \"b64pdf encode\" for binary files", args[0])
				}
				if _, err := m.UploadFile(ctx, args[0]); err != nil {
					printStatus(m.Status())
					return err
				}
			default:
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				m.SetInput(string(data))
			}

			art, err := m.Convert(ctx)
			printStatus(m.Status())
			if err != nil {
				return err
			}
			if !art.HasPDFHeader() {
				printWarning("decoded content does not start with a PDF header")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&text, "text", "t", "", "Base64 or JSON text to convert")
	cmd.Flags().StringVarP(&name, "name", "n", "", "output file name (.pdf is appended when missing)")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	cmd.Flags().BoolVar(&useBrowser, "browser", false, "download through headless Chrome")

	return cmd
}

// newEncodeCmd creates the encode subcommand.
func newEncodeCmd() *cobra.Command {
	var (
		copyOut bool
		outFile string
	)

	cmd := &cobra.Command{
		Use:   "encode <file>",
		Short: "Print a file as Base64",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("%w: %w", b64pdf.ErrUnreadableFile, err)
			}
			defer f.Close()

			data, err := io.ReadAll(f)
			if err != nil {
				return fmt.Errorf("%w: %w", b64pdf.ErrUnreadableFile, err)
			}
			encoded := b64pdf.Encode(data)

			if copyOut {
				m := newManager(nil)
				m.SetInput(encoded)
				if err := m.CopyInput(); err != nil {
					printStatus(m.Status())
					return err
				}
				printStatus(m.Status())
			}

			if outFile != "" {
				if err := os.WriteFile(outFile, []byte(encoded+"\n"), 0o644); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
				printSuccess("wrote %d Base64 characters to %s", len(encoded), outFile)
				return nil
			}
			if !copyOut {
				fmt.Fprintln(cmd.OutOrStdout(), encoded)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&copyOut, "copy", false, "copy the Base64 text to the clipboard")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "write the Base64 text to a file")

	return cmd
}

// newVersionCmd creates the version subcommand.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "b64pdf %s\n", version)
		},
	}
}

func newManager(dl b64pdf.Downloader) *b64pdf.Manager {
	return b64pdf.NewManager(dl,
		b64pdf.WithLogger(logger),
		b64pdf.WithExtractor(cfg.Extractor()),
		b64pdf.WithDefaultFileName(cfg.Output.DefaultFileName),
		b64pdf.WithClipboard(b64pdf.SystemClipboard{}),
	)
}

// openDownloader builds the downloader selected by the configuration and
// returns a function that closes it.
func openDownloader(cfg *config.Config) (b64pdf.Downloader, func(), error) {
	if !cfg.Browser.Enabled {
		dl, err := b64pdf.NewFileDownloader(cfg.Output.Dir)
		if err != nil {
			return nil, nil, err
		}
		return dl, func() { dl.Close() }, nil
	}

	opts := []b64pdf.BrowserOption{
		b64pdf.WithDownloadDir(cfg.Output.Dir),
		b64pdf.WithTimeout(cfg.Browser.Timeout),
		b64pdf.WithHeadless(cfg.Browser.Headless),
		b64pdf.WithBrowserLogger(logger),
	}
	if cfg.Browser.ChromePath != "" {
		opts = append(opts, b64pdf.WithChromePath(cfg.Browser.ChromePath))
	}
	if cfg.Browser.NoSandbox {
		opts = append(opts, b64pdf.WithNoSandbox())
	}
	if cfg.Browser.AutoDownload {
		opts = append(opts, b64pdf.WithAutoDownload())
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " Starting browser..."
	s.Start()
	dl, err := b64pdf.NewBrowserDownloader(opts...)
	s.Stop()
	if err != nil {
		return nil, nil, err
	}
	logger.Debug().Str("download_dir", dl.DownloadDir()).Msg("browser downloader ready")
	return dl, func() { dl.Close() }, nil
}
