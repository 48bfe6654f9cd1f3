// Package b64pdf turns Base64 text into downloadable PDF files, and files
// back into Base64 text.
//
// # Decoding
//
// For one-off use the package-level helper runs the whole pipeline:
//
//	data, err := b64pdf.Decode(input)
//
// The input may be bare Base64, a data URI, a JSON document carrying the
// payload in a known member (see [DefaultFieldNames]) or dirty text with a
// long Base64 run somewhere inside. Extraction is a best-effort heuristic;
// compose your own with [Chain], [JSONFields] and [LongestRun]:
//
//	ex := b64pdf.Chain{
//	    b64pdf.JSONFields{Names: []string{"payload"}},
//	    b64pdf.LongestRun{MinLength: 64},
//	}
//
// # Downloading
//
// A [Manager] holds one session: the input field, the output name, the
// status line and the current download control. It downloads through a
// [Downloader] and keeps at most one handle alive:
//
//	dl, err := b64pdf.NewFileDownloader("out")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer dl.Close()
//
//	m := b64pdf.NewManager(dl)
//	m.SetInput("SGVsbG8sIFdvcmxkIQ==")
//	art, err := m.Convert(ctx)   // writes out/document.pdf
//	err = m.Redownload(ctx)      // writes out/document (1).pdf
//	err = m.Clear(ctx)           // releases the handle
//
// [BrowserDownloader] does the same inside headless Chrome with real Blob
// object URLs:
//
//	dl, err := b64pdf.NewBrowserDownloader(
//	    b64pdf.WithDownloadDir("out"),
//	    b64pdf.WithAutoDownload(),
//	)
//
// An [Artifact] gives access to the decoded bytes:
//
//	art.Bytes()                        // []byte
//	art.Base64()                       // standard Base64
//	art.Reader()                       // *bytes.Reader
//	art.WriteToFile("out.pdf", 0o644)  // write to disk
package b64pdf
