package main

import (
	"context"
	"fmt"
	"image/png"
	"io/ioutil"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	tracing "github.com/jamesrr39/go-tracing"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/httpextra"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/ownmap-symbolizer/fonts"
	"github.com/jamesrr39/ownmap-symbolizer/styledal"
	"github.com/jamesrr39/ownmap-symbolizer/styledal/stylesqldb"
	"github.com/jamesrr39/ownmap-symbolizer/styling"
	"github.com/jamesrr39/ownmap-symbolizer/styling/cartocss"
	"github.com/jamesrr39/ownmap-symbolizer/styling/mapboxglstyle"
	"github.com/jamesrr39/ownmap-symbolizer/styling/styleexpr"
	"github.com/jamesrr39/ownmap-symbolizer/styling/stylexml"
	"github.com/jamesrr39/ownmap-symbolizer/swatchrenderer"
	"github.com/jamesrr39/ownmap-symbolizer/symbolizer"
	"github.com/jamesrr39/ownmap-symbolizer/webservices"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/pkg/profile"
)

const (
	DEFAULT_PORT                   = 9010
	DEFAULT_MAX_CONCURRENT_RENDERS = 8
)

var logger *logpkg.Logger

func main() {
	logger = logpkg.NewLogger(os.Stderr, logpkg.LogLevelInfo)

	verbose := kingpin.Flag("v", "verbose logging").Bool()
	rootDir := kingpin.Flag("data-dir", "directory for styles, traces and the default style database").String()

	var pathsConfig *styledal.PathsConfig
	kingpin.CommandLine.PreAction(func(ctx *kingpin.ParseContext) error {
		if *verbose {
			logger = logpkg.NewLogger(os.Stderr, logpkg.LogLevelDebug)
		}
		symbolizer.SetDiagnosticsLogger(logger)

		var err errorsx.Error
		pathsConfig, err = ensurePathsConfig(*rootDir)
		if err != nil {
			return fmt.Errorf("error: %q\nStack trace:\n%s", err.Error(), err.Stack())
		}
		return nil
	})

	getPathsConfig := func() *styledal.PathsConfig {
		return pathsConfig
	}

	setupServe(getPathsConfig)
	setupInspect()
	setupKeys()
	setupSwatch()
	setupConvert()
	setupStore(getPathsConfig)

	kingpin.Parse()
}

func ensurePathsConfig(rootDir string) (*styledal.PathsConfig, errorsx.Error) {
	pathsConfig, err := styledal.NewPathsConfig(rootDir)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	err = pathsConfig.EnsurePaths()
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	return pathsConfig, nil
}

// runAction adapts a command to kingpin, printing the stack trace of a failure
func runAction(run func() errorsx.Error) kingpin.Action {
	return func(ctx *kingpin.ParseContext) error {
		err := run()
		if err != nil {
			return fmt.Errorf("error: %q\nStack trace:\n%s", err.Error(), err.Stack())
		}
		return nil
	}
}

// loadStyle reads a style document, choosing the reader by file extension:
// .xml for style XML, .mss for CartoCSS and .json for Mapbox GL styles.
// The style ID is the file name without the extension.
func loadStyle(stylePath string) (*styling.Map, errorsx.Error) {
	id := strings.TrimSuffix(filepath.Base(stylePath), filepath.Ext(stylePath))

	switch strings.ToLower(filepath.Ext(stylePath)) {
	case ".xml":
		return stylexml.ReadFile(stylePath)
	case ".mss":
		stylesheet, err := ioutil.ReadFile(stylePath)
		if err != nil {
			return nil, errorsx.Wrap(err, "path", stylePath)
		}
		return cartocss.Parse(string(stylesheet), id)
	case ".json":
		file, err := os.Open(stylePath)
		if err != nil {
			return nil, errorsx.Wrap(err, "path", stylePath)
		}
		defer file.Close()

		return mapboxglstyle.Load(file, id, mapboxglstyle.Options{
			OSMTags: true,
			Logger:  logger,
		})
	}

	return nil, errorsx.Errorf("unsupported style file type: %q", stylePath)
}

func loadStylesFromDir(dir string, defaultStyleID string) (*styling.StyleSet, errorsx.Error) {
	fileInfos, err := ioutil.ReadDir(dir)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	styles := []*styling.Map{styling.NewBuiltinMap()}
	for _, fileInfo := range fileInfos {
		if fileInfo.IsDir() {
			continue
		}

		style, err := loadStyle(filepath.Join(dir, fileInfo.Name()))
		if err != nil {
			logger.Warn("error loading style from %q. Error: %q", filepath.Join(dir, fileInfo.Name()), err)
			continue
		}

		styles = append(styles, style)
	}

	sort.Slice(styles, func(a, b int) bool {
		return styles[a].GetStyleID() > styles[b].GetStyleID()
	})

	styleSet, err := styling.NewStyleSet(styles, defaultStyleID)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	return styleSet, nil
}

func openStore(connString string, pathsConfig *styledal.PathsConfig) (styledal.StyleStore, errorsx.Error) {
	conn := styledal.StoreConnectionURL{Type: styledal.StoreTypeSQLite, ConnectionPath: pathsConfig.DefaultDBPath()}
	if connString != "" {
		var err errorsx.Error
		conn, err = styledal.ParseStoreConnString(connString)
		if err != nil {
			return nil, errorsx.Wrap(err)
		}
	}

	store, err := stylesqldb.Open(conn)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	return store, nil
}

var storeHelp = fmt.Sprintf("style database to use. It should be the type, followed by the separator (%s), followed by the path or URL. For example: %s%smy/styles.db. Defaults to a SQLite database in the data directory",
	styledal.ConnectionPathSeparator,
	string(styledal.StoreTypeSQLite),
	styledal.ConnectionPathSeparator,
)

var addrHelp = fmt.Sprintf(
	`address to serve on. Ex: ':%d' listen on port %d to traffic from anywhere. 'localhost:%d' listen on port %d to traffic from localhost`,
	DEFAULT_PORT, DEFAULT_PORT, DEFAULT_PORT, DEFAULT_PORT,
)

func setupServe(getPathsConfig func() *styledal.PathsConfig) {
	cmd := kingpin.Command("serve", "serve the symbolizer API")
	addr := cmd.Flag("addr", addrHelp).Default(fmt.Sprintf("localhost:%d", DEFAULT_PORT)).String()
	stylesDir := cmd.Flag("styles-dir", "folder containing style definitions (.xml, .mss or Mapbox GL .json). Defaults to the styles folder in the data directory").String()
	defaultStyleID := cmd.Flag("default-style-id", "style returned when none is asked for").Default(styling.BUILTIN_STYLEID).String()
	storeConnString := cmd.Flag("store", storeHelp).String()
	maxConcurrentRenders := cmd.Flag("max-concurrent-renders", "maximum amount of swatches rendered at the same time").Default(fmt.Sprintf("%d", DEFAULT_MAX_CONCURRENT_RENDERS)).Uint()
	shouldProfile := cmd.Flag("profile", "profile the server's CPU usage").Bool()
	cmd.Action(runAction(func() errorsx.Error {
		pathsConfig := getPathsConfig()

		if *shouldProfile {
			defer profile.Start(profile.ProfilePath(pathsConfig.TraceDir), profile.CPUProfile).Stop()
		}

		dir := *stylesDir
		if dir == "" {
			dir = pathsConfig.StylesDir
		}

		styleSet, err := loadStylesFromDir(dir, *defaultStyleID)
		if err != nil {
			return errorsx.Wrap(err)
		}

		store, err := openStore(*storeConnString, pathsConfig)
		if err != nil {
			return errorsx.Wrap(err)
		}
		defer store.Close()

		router, err := createServer(styleSet, store, pathsConfig, *maxConcurrentRenders)
		if err != nil {
			return errorsx.Wrap(err)
		}

		server := httpextra.NewServerWithTimeouts()
		server.Addr = *addr
		server.Handler = router

		logger.Info("about to start serving on %q. Style store: %q", *addr, store.Name())

		listenErr := server.ListenAndServe()
		if listenErr != nil {
			return errorsx.Wrap(listenErr)
		}
		return nil
	}))
}

func createServer(styleSet *styling.StyleSet, store styledal.StyleStore, pathsConfig *styledal.PathsConfig, maxConcurrentRenders uint) (chi.Router, errorsx.Error) {
	traceFilePath := filepath.Join(pathsConfig.TraceDir, fmt.Sprintf("trace_%s.pbf", time.Now().Format("2006-01-02__03_04_05")))
	logger.Info("tracing at %q", traceFilePath)

	traceFile, err := os.Create(traceFilePath)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	tracer := tracing.NewTracer(traceFile)

	renderer := swatchrenderer.NewSwatchRenderer(fonts.DefaultFont())

	router := chi.NewRouter()
	router.Use(middleware.DefaultLogger)
	router.Use(httpextra.CorsAllowAnythingMiddleware())
	router.Use(tracing.Middleware(tracer))
	router.Route("/api/", func(r chi.Router) {
		r.Mount("/info", webservices.NewInfoService(logger, styleSet))
		r.Mount("/symbolizers", webservices.NewSymbolizerService(logger, renderer, maxConcurrentRenders))
		r.Mount("/styles", webservices.NewStyleService(logger, styleSet))
		r.Route("/stored-styles", func(r chi.Router) {
			r.Use(createLocalhostMiddleware())
			r.Mount("/", webservices.NewStoredStyleService(logger, store))
		})
	})

	return router, nil
}

func createLocalhostMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			if !isLocalhost(r.RemoteAddr) {
				http.Error(w, "connections only allowed from the same computer the server is running on", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		}

		return http.HandlerFunc(fn)
	}
}

func isLocalhost(remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}

	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// parseAssignments splits name=value pairs given on the command line
func parseAssignments(assignments []string) (map[string]string, errorsx.Error) {
	values := make(map[string]string)
	for _, assignment := range assignments {
		fragments := strings.SplitN(assignment, "=", 2)
		if len(fragments) != 2 {
			return nil, errorsx.Errorf("expected name=value, but got %q", assignment)
		}
		values[strings.TrimSpace(fragments[0])] = fragments[1]
	}
	return values, nil
}

func newSymbolizerFromArgs(kindName string, properties []string) (symbolizer.Symbolizer, errorsx.Error) {
	kind, err := symbolizer.ParseKind(kindName)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	sym, err := symbolizer.New(kind)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	values, err := parseAssignments(properties)
	if err != nil {
		return nil, err
	}

	var names []string
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		err = symbolizer.SetFromString(sym, name, values[name])
		if err != nil {
			return nil, errorsx.Wrap(err)
		}
	}

	return sym, nil
}

func setupInspect() {
	cmd := kingpin.Command("inspect", "print the properties of a symbolizer kind's defaults, with any overrides applied")
	kindName := cmd.Arg("kind", "symbolizer kind, e.g. line or LineSymbolizer").Required().String()
	properties := cmd.Flag("set", "property to set, as name=value").Short('s').Strings()
	cmd.Action(runAction(func() errorsx.Error {
		sym, err := newSymbolizerFromArgs(*kindName, *properties)
		if err != nil {
			return err
		}

		fmt.Printf("%s (%016x)\n", symbolizer.Type(sym), symbolizer.StructuralHash(sym))
		formatted := symbolizer.FormatProperties(sym)
		for _, name := range symbolizer.Keys(sym) {
			fmt.Printf("  %s: %s\n", name, formatted[name])
		}
		return nil
	}))
}

func setupKeys() {
	cmd := kingpin.Command("keys", "list the property keys")
	kindName := cmd.Arg("kind", "only list the keys a symbolizer kind declares").String()
	cmd.Action(runAction(func() errorsx.Error {
		keys := symbolizer.AllKeys()
		if *kindName != "" {
			kind, err := symbolizer.ParseKind(*kindName)
			if err != nil {
				return errorsx.Wrap(err)
			}
			keys = symbolizer.Properties(kind)
		}

		for _, key := range keys {
			metadata, err := symbolizer.Metadata(key)
			if err != nil {
				return errorsx.Wrap(err)
			}

			line := fmt.Sprintf("%s\t%s", metadata.Name, metadata.TargetType)
			if enumNames := symbolizer.EnumNames(key); len(enumNames) != 0 {
				line += "\t" + strings.Join(enumNames, "|")
			}
			fmt.Println(line)
		}
		return nil
	}))
}

func setupSwatch() {
	cmd := kingpin.Command("swatch", "render a symbolizer swatch to a PNG file")
	kindName := cmd.Arg("kind", "symbolizer kind").Required().String()
	outPath := cmd.Arg("out", "PNG file to write").Required().String()
	size := cmd.Flag("size", "width and height of the swatch, in pixels").Default("64").Int()
	properties := cmd.Flag("set", "property to set, as name=value").Short('s').Strings()
	attributes := cmd.Flag("attr", "feature attribute for deferred properties, as name=value").Short('a').Strings()
	cmd.Action(runAction(func() errorsx.Error {
		sym, err := newSymbolizerFromArgs(*kindName, *properties)
		if err != nil {
			return err
		}

		attributeValues, err := parseAssignments(*attributes)
		if err != nil {
			return err
		}
		feature := styleexpr.MapFeature{}
		for name, value := range attributeValues {
			feature[name] = value
		}

		renderer := swatchrenderer.NewSwatchRenderer(fonts.DefaultFont())
		img, err := renderer.Render(context.Background(), sym, *size, feature)
		if err != nil {
			return errorsx.Wrap(err)
		}

		file, createErr := os.Create(*outPath)
		if createErr != nil {
			return errorsx.Wrap(createErr)
		}
		defer file.Close()

		encodeErr := png.Encode(file, img)
		if encodeErr != nil {
			return errorsx.Wrap(encodeErr)
		}

		logger.Info("wrote %dx%d swatch to %q", *size, *size, *outPath)
		return nil
	}))
}

func setupConvert() {
	cmd := kingpin.Command("convert", "convert a style (.xml, .mss or Mapbox GL .json) to style XML")
	inPath := cmd.Arg("in", "style file to read").Required().String()
	outPath := cmd.Arg("out", "XML file to write. Defaults to stdout").String()
	cmd.Action(runAction(func() errorsx.Error {
		m, err := loadStyle(*inPath)
		if err != nil {
			return errorsx.Wrap(err)
		}

		if *outPath == "" {
			return stylexml.Write(os.Stdout, m)
		}

		file, createErr := os.Create(*outPath)
		if createErr != nil {
			return errorsx.Wrap(createErr)
		}
		defer file.Close()

		return stylexml.Write(file, m)
	}))
}

func setupStore(getPathsConfig func() *styledal.PathsConfig) {
	storeCmd := kingpin.Command("store", "manage the styles kept in the style database")
	storeConnString := storeCmd.Flag("store", storeHelp).String()

	withStore := func(fn func(store styledal.StyleStore) errorsx.Error) kingpin.Action {
		return runAction(func() errorsx.Error {
			store, err := openStore(*storeConnString, getPathsConfig())
			if err != nil {
				return errorsx.Wrap(err)
			}
			defer store.Close()

			return fn(store)
		})
	}

	saveCmd := storeCmd.Command("save", "save the feature type styles of a style file")
	stylePath := saveCmd.Arg("style-file", "style file to read").Required().String()
	styleNames := saveCmd.Arg("names", "feature type styles to save. Defaults to all of them").Strings()
	saveCmd.Action(withStore(func(store styledal.StyleStore) errorsx.Error {
		m, err := loadStyle(*stylePath)
		if err != nil {
			return errorsx.Wrap(err)
		}

		styles := m.Styles
		if len(*styleNames) != 0 {
			styles = nil
			for _, name := range *styleNames {
				style := m.Style(name)
				if style == nil {
					return errorsx.Wrap(styling.ErrStyleNotFound, "style", name, "path", *stylePath)
				}
				styles = append(styles, style)
			}
		}

		for _, style := range styles {
			err = store.Save(style)
			if err != nil {
				return errorsx.Wrap(err)
			}
			logger.Info("saved %q (%d rules)", style.Name, len(style.Rules))
		}
		return nil
	}))

	listCmd := storeCmd.Command("list", "list the saved styles")
	listCmd.Action(withStore(func(store styledal.StyleStore) errorsx.Error {
		summaries, err := store.List()
		if err != nil {
			return errorsx.Wrap(err)
		}

		for _, summary := range summaries {
			fmt.Printf("%s\t%d rules\t%s\n", summary.Name, summary.RuleCount, summary.SavedAt.Format(time.RFC3339))
		}
		return nil
	}))

	exportCmd := storeCmd.Command("export", "write saved styles to stdout as style XML")
	exportNames := exportCmd.Arg("names", "styles to export").Required().Strings()
	exportID := exportCmd.Flag("id", "map ID of the exported style").Default("exported").String()
	exportCmd.Action(withStore(func(store styledal.StyleStore) errorsx.Error {
		m := styling.NewMap(*exportID)
		for _, name := range *exportNames {
			style, err := store.Load(name)
			if err != nil {
				return errorsx.Wrap(err)
			}

			err = m.AddStyle(style)
			if err != nil {
				return errorsx.Wrap(err)
			}
		}

		return stylexml.Write(os.Stdout, m)
	}))

	deleteCmd := storeCmd.Command("delete", "delete a saved style")
	deleteName := deleteCmd.Arg("name", "style to delete").Required().String()
	deleteCmd.Action(withStore(func(store styledal.StyleStore) errorsx.Error {
		err := store.Delete(*deleteName)
		if err != nil {
			return errorsx.Wrap(err)
		}

		logger.Info("deleted %q", *deleteName)
		return nil
	}))
}
