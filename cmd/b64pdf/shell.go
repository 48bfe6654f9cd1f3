package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	b64pdf "github.com/porticus-lab/go-b64pdf"
)

const shellHelp = `Commands:
  load <file>     read a file into the input (.txt/.json/.xml as text, others as Base64)
  paste           read input lines until a line with a single "."
  text <base64>   set the input to the rest of the line
  name <file>     set the output file name
  convert         decode the input and download it as a PDF
  again           download the current PDF again
  clear           release the current download and reset the form
  copy            copy the input to the clipboard
  status          show the form state
  help            show this help
  quit            leave the shell
`

// newShellCmd creates the shell subcommand, an interactive session that
// keeps one download alive across conversions.
func newShellCmd() *cobra.Command {
	var useBrowser bool

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive conversion session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			return runShell(cmd.Context(), m, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&useBrowser, "browser", false, "download through headless Chrome")
	return cmd
}

func runShell(ctx context.Context, m *b64pdf.Manager, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 64*1024), 64<<20)

	fmt.Fprint(out, "b64pdf shell. Type \"help\" for commands.\n")
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(sc.Text())
		verb, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		switch verb {
		case "":
			continue
		case "quit", "exit":
			return nil
		case "help":
			fmt.Fprint(out, shellHelp)
		case "load":
			if rest == "" {
				printWarning("usage: load <file>")
				continue
			}
			if _, err := m.UploadFile(ctx, rest); err != nil {
				printWarning("load: %v", err)
				continue
			}
			printStatus(m.Status())
		case "paste":
			text, err := readUntilDot(sc)
			if err != nil {
				return err
			}
			m.SetInput(text)
			printInfo("input set (%d characters)", len(text))
		case "text":
			m.SetInput(rest)
			printInfo("input set (%d characters)", len(rest))
		case "name":
			m.SetFileName(rest)
			printInfo("output name: %s", m.OutputName())
		case "convert":
			_, _ = m.Convert(ctx)
			printStatus(m.Status())
		case "again":
			if err := m.Redownload(ctx); err != nil {
				if errors.Is(err, b64pdf.ErrNoArtifact) {
					printWarning("nothing to download yet; run convert first")
				} else {
					printStatus(m.Status())
				}
				continue
			}
			printStatus(m.Status())
		case "clear":
			if err := m.Clear(ctx); err != nil {
				printWarning("clear: %v", err)
				continue
			}
			printInfo("form cleared")
		case "copy":
			_ = m.CopyInput()
			printStatus(m.Status())
		case "status":
			printShellState(out, m)
		default:
			printWarning("unknown command %q; type \"help\"", verb)
		}
	}
}

// readUntilDot collects lines up to a line holding only ".".
func readUntilDot(sc *bufio.Scanner) (string, error) {
	var b strings.Builder
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) == "." {
			return b.String(), nil
		}
		b.WriteString(sc.Text())
		b.WriteByte('\n')
	}
	return b.String(), sc.Err()
}

func printShellState(out io.Writer, m *b64pdf.Manager) {
	fmt.Fprintf(out, "input:    %d characters\n", len(m.Input()))
	name := m.FileName()
	if name == "" {
		name = m.OutputName() + " (default)"
	}
	fmt.Fprintf(out, "name:     %s\n", name)
	if c := m.Control(); c != nil {
		fmt.Fprintf(out, "download: %s (%d bytes) via %s\n", c.FileName, c.Size, c.Handle)
	} else {
		fmt.Fprintln(out, "download: none")
	}
	if s := m.Status(); !s.IsZero() {
		fmt.Fprintf(out, "status:   [%s] %s\n", s.Level, s.Message)
	}
}
