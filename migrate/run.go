// Package migrate drives conversion of legacy CMS markup exports into the
// structured document model.
package migrate

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"lcm/archive"
	"lcm/config"
	"lcm/document"
	"lcm/lookup"
	"lcm/markup"
	"lcm/state"
)

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("migrate")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	src, err = filepath.Abs(src)
	if err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Mailformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	applyLookupOverrides(cmd, &env.Cfg.Migration.Lookup, log)
	if cmd.IsSet("bundle") {
		env.Cfg.Migration.Bundle = cmd.Bool("bundle")
	}
	env.NoDirs, env.Overwrite = cmd.Bool("nodirs"), cmd.Bool("overwrite")

	// Since zip "standard" does not define file name encoding we may need to
	// force archaic code page for old archives
	cp := cmd.String("force-cp")
	if len(cp) > 0 {
		env.CodePage, err = ianaindex.IANA.Encoding(cp)
		if err != nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
			env.CodePage = nil
		} else {
			n, _ := ianaindex.IANA.Name(env.CodePage)
			log.Debug("Forcefully converting all non UTF-8 content and file names", zap.String("charset", n))
		}
	}

	var cache lookup.Cache
	tables, err := cache.Load(func() (*lookup.Tables, error) {
		return loadTables(&env.Cfg.Migration.Lookup, log)
	})
	if err != nil {
		return fmt.Errorf("unable to load lookup tables: %w", err)
	}

	mig := &migration{
		conv: markup.New(markup.Options{
			BaseURL:          env.Cfg.Migration.BaseURL,
			SiteHosts:        env.Cfg.Migration.SiteHosts,
			HeadingLevels:    env.Cfg.Migration.HeadingLevels,
			DropColumnBreaks: env.Cfg.Migration.ColumnBreaks == config.ColumnBreakModeDrop,
		}, tables, log),
	}

	if env.Cfg.Migration.Bundle {
		if mig.bnd, err = newBundle(bundlePath(dst), env.Cfg.Migration.FixZip); err != nil {
			return err
		}
		defer mig.bnd.discard()
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	if err := mig.process(ctx, src, dst, log); err != nil {
		return err
	}
	if mig.bnd != nil {
		return mig.bnd.seal()
	}
	return nil
}

// applyLookupOverrides lets command line take precedence over configuration
// for lookup table location.
func applyLookupOverrides(cmd *cli.Command, conf *config.LookupConfig, log *zap.Logger) {
	if f := cmd.String("lookup-format"); len(f) > 0 {
		format, err := config.ParseLookupFormat(f)
		if err != nil {
			log.Warn("Unknown lookup format requested. Ignoring...", zap.String("format", f), zap.Error(err))
		} else {
			conf.Format = format
		}
	}
	if p := cmd.String("lookup-products"); len(p) > 0 {
		conf.Products = p
	}
	if p := cmd.String("lookup-pages"); len(p) > 0 {
		conf.Pages = p
	}
	if s := cmd.String("lookup-source"); len(s) > 0 {
		conf.Source = s
	}
}

// loadTables reads reference tables in the configured format. Missing
// configuration is not an error, unresolvable references will simply get the
// fallback target.
func loadTables(conf *config.LookupConfig, log *zap.Logger) (*lookup.Tables, error) {
	switch conf.Format {
	case config.LookupFmtCSV:
		if len(conf.Products) == 0 && len(conf.Pages) == 0 {
			log.Warn("No lookup tables configured, all shortcode references will be unresolved")
			return lookup.NewTables(), nil
		}
		return lookup.LoadCSV(conf.Products, conf.Pages, log)
	case config.LookupFmtXML:
		if len(conf.Source) == 0 {
			log.Warn("No lookup source configured, all shortcode references will be unresolved")
			return lookup.NewTables(), nil
		}
		return lookup.LoadMySQLDumpXML(conf.Source, log)
	case config.LookupFmtSQLite:
		if len(conf.Source) == 0 {
			log.Warn("No lookup source configured, all shortcode references will be unresolved")
			return lookup.NewTables(), nil
		}
		return lookup.LoadSQLite(conf.Source)
	default:
		return nil, fmt.Errorf("unsupported lookup format: %s", conf.Format)
	}
}

// bundlePath derives the bundle archive location from the destination
// argument.
func bundlePath(dst string) string {
	if strings.EqualFold(filepath.Ext(dst), ".zip") {
		return dst
	}
	return filepath.Join(dst, "documents.zip")
}

// migration carries per run pieces shared by all processed documents.
type migration struct {
	conv *markup.Converter
	bnd  *bundle
}

// process handles the core migration logic independently of CLI framework. It
// determines the input type (directory, archive, or single file) and processes
// accordingly.
func (m *migration) process(ctx context.Context, src, dst string, log *zap.Logger) error {
	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exists - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			if err := m.processDir(ctx, head, dst, log); err != nil {
				return errors.New("unable to process directory")
			}
			break
		}

		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		isArchive, err := isArchiveFile(head)
		if err != nil {
			// checking format - but cannot open target file
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if isArchive {
			// we need to look inside to see if path makes sense
			tail = strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator))
			if err := m.processArchive(ctx, head, tail, "", dst, log); err != nil {
				return fmt.Errorf("unable to process archive: %w", err)
			}
			break
		}

		isMarkup, enc, err := isMarkupFile(head)
		if err != nil {
			// checking format - but cannot open target file
			return fmt.Errorf("unable to check file type: %w", err)
		}
		if isMarkup && len(tail) == 0 {
			// we have markup export, it cannot have tail
			if file, err := os.Open(head); err != nil {
				log.Error("Unable to process file", zap.String("file", head), zap.Error(err))
			} else {
				defer file.Close()
				if err := m.processDocument(ctx, file, enc, filepath.Base(head), dst, log); err != nil {
					log.Error("Unable to process file", zap.String("file", head), zap.Error(err))
				}
			}
			break
		}
		return fmt.Errorf("input was not recognized as legacy markup export (%s)", head)

	}
	if len(head) == 0 {
		return fmt.Errorf("input source was not found (%s)", src)
	}
	return nil
}

// processDir walks directory tree finding markup exports and processes them
// in natural sort order, mirroring how the legacy CMS numbered its exports.
func (m *migration) processDir(ctx context.Context, dir, dst string, log *zap.Logger) (err error) {
	count := 0
	defer func() {
		if err == nil && count == 0 {
			log.Debug("Nothing to process", zap.String("dir", dir))
		}
	}()

	var paths []string
	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if info.Mode().IsRegular() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return err
	}
	sort.Slice(paths, func(i, j int) bool { return natural.Less(paths[i], paths[j]) })

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}

		isArchive, err := isArchiveFile(path)
		if err != nil {
			// checking format - but cannot open target file
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			continue
		}
		if isArchive {
			if err := m.processArchive(ctx, path, "", filepath.Dir(strings.TrimPrefix(path, dir)), dst, log); err != nil {
				log.Error("Unable to process archive", zap.String("file", path), zap.Error(err))
			}
			continue
		}

		isMarkup, enc, err := isMarkupFile(path)
		if err != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			continue
		}
		if !isMarkup {
			log.Debug("Skipping file, not recognized as markup export or archive", zap.String("file", path))
			continue
		}

		count++

		file, err := os.Open(path)
		if err != nil {
			log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
			continue
		}

		src := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))
		if err := m.processDocument(ctx, file, enc, src, dst, log); err != nil {
			log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
		}
		file.Close()
	}
	return nil
}

// processArchive walks all files inside archive, finds markup exports under
// "pathIn" and processes them.
func (m *migration) processArchive(ctx context.Context, path, pathIn, pathOut, dst string, log *zap.Logger) (err error) {
	count := 0
	defer func() {
		if err == nil && count == 0 {
			log.Debug("Nothing to process", zap.String("archive", path))
		}
	}()

	match := func(name string) bool { return strings.HasPrefix(name, pathIn) }
	err = archive.Walk(path, match, func(arc string, f *zip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		isMarkup, enc, err := isMarkupInArchive(f)
		if err != nil {
			log.Warn("Skipping file in archive",
				zap.String("archive", arc), zap.String("path", f.FileHeader.Name), zap.Error(err))
			return nil
		}
		if !isMarkup {
			log.Debug("Skipping file, not recognized as markup export", zap.String("archive", arc), zap.String("file", f.FileHeader.Name))
			return nil
		}

		count++

		r, err := f.Open()
		if err != nil {
			log.Error("Unable to process file in archive",
				zap.String("archive", arc), zap.String("file", f.FileHeader.Name), zap.Error(err))
			return nil
		}
		defer r.Close()

		cp := state.EnvFromContext(ctx).CodePage

		pathInArchive := f.FileHeader.Name
		if cp != nil && f.FileHeader.NonUTF8 {
			// forcing zip file name encoding
			if n, err := cp.NewDecoder().String(pathInArchive); err == nil {
				pathInArchive = n
			} else {
				n, _ = ianaindex.IANA.Name(cp)
				log.Warn("Unable to convert archive name from specified encoding",
					zap.String("charset", n), zap.String("path", pathInArchive), zap.Error(err))
			}
		}
		if err := m.processDocument(ctx, r, enc, filepath.Join(pathOut, pathInArchive), dst, log); err != nil {
			log.Error("Unable to process file in archive",
				zap.String("archive", arc), zap.String("file", f.FileHeader.Name), zap.Error(err))
		}
		return nil
	})
	return err
}

// processDocument converts a single markup export. "src" is part of the
// source path (always including file name) relative to the original path.
// When actual file was specified it will be just base file name without a
// path. When looking inside archive or directory it will be relative path
// inside archive or directory (including base file name). "dst" is the
// destination directory where the converted document should be written.
func (m *migration) processDocument(ctx context.Context, r io.Reader, enc srcEncoding, src, dst string, log *zap.Logger) (rerr error) {
	env := state.EnvFromContext(ctx)

	docID := document.NewKey()
	var outputName string

	log.Info("Conversion starting", zap.String("from", src))
	defer func(start time.Time) {
		// NOTE: a single malformed export should never stop a long migration
		// run, recover and keep going.
		if r := recover(); r != nil {
			log.Error("Conversion ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("conversion panic: %v", r)
		} else {
			log.Info("Conversion completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.String("doc_id", docID))
		}
	}(time.Now())

	text, err := readMarkup(r, enc, env.CodePage)
	if err != nil {
		return fmt.Errorf("unable to read markup source (%s): %w", src, err)
	}

	doc := m.conv.Convert(text)
	if env.Cfg.Migration.TwoColumnPass {
		doc.Nodes = document.NormalizeColumns(doc.Nodes)
	}
	probeAssets(doc.Nodes, env.Cfg.Migration.BaseURL, env.Cfg.Migration.AssetsRoot, log)

	data, err := document.Encode(doc)
	if err != nil {
		return fmt.Errorf("unable to serialize document (%s): %w", src, err)
	}

	title := documentTitle(doc)
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	}

	if m.bnd != nil {
		outputName = buildOutputPath(src, "", title, docID, env)
		if err := m.bnd.add(outputName, data); err != nil {
			return fmt.Errorf("unable to write document to bundle: %w", err)
		}
		env.Rpt.StoreData(fmt.Sprintf("result-%s%s", docID, outputExtension), data)
		return nil
	}

	outputName = buildOutputPath(src, dst, title, docID, env)

	// Check if output file already exists
	if _, err := os.Stat(outputName); err == nil {
		if !env.Overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		log.Warn("Overwriting existing file", zap.String("file", outputName))
		if err = os.Remove(outputName); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	} else if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	if err := os.WriteFile(outputName, data, 0644); err != nil {
		return fmt.Errorf("unable to write document: %w", err)
	}

	// Store conversion result for debugging
	if env.Rpt != nil {
		env.Rpt.Store(fmt.Sprintf("result-%s%s", docID, outputExtension), outputName)
	}

	return nil
}

// documentTitle picks the first heading text as the document title for
// template expansion.
func documentTitle(doc *document.Document) string {
	for _, node := range doc.Nodes {
		if node.Kind != document.NodeText || node.Text == nil {
			continue
		}
		if node.Text.Style == document.StyleHeading || node.Text.Style == document.StyleSubheading {
			return node.Text.AsPlainText()
		}
	}
	return ""
}
