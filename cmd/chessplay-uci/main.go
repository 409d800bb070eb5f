package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"runtime/pprof"

	"github.com/hailam/chessplay/internal/engine"
	"github.com/hailam/chessplay/internal/storage"
	"github.com/hailam/chessplay/internal/uci"
)

// defaultNetFile is the weight blob name auto-load looks for in each
// search path.
const defaultNetFile = "chessplay.nnue"

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")

func main() {
	flag.Parse()

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", profilePath)
	}

	// Create engine with 64MB hash table
	// Multi-threaded search enabled (Lazy SMP)
	eng := engine.NewEngine(64)

	// Auto-load NNUE from default locations
	if err := autoLoadNNUE(eng); err != nil {
		log.Printf("Warning: NNUE not loaded: %v (using classical evaluation)", err)
	}

	if tbCacheDir, err := storage.GetTablebaseCacheDir(); err != nil {
		log.Printf("Warning: tablebase cache directory unavailable: %v (Lichess tablebase disabled)", err)
	} else if err := eng.EnableCachedLichessTablebase(tbCacheDir); err != nil {
		log.Printf("Warning: tablebase cache unavailable: %v (Lichess tablebase disabled)", err)
	}
	defer eng.Close()

	// Create and run UCI protocol handler, restoring any settings a
	// previous session persisted (NNUE/Syzygy paths, probe depth).
	var protocol *uci.UCI
	store, err := storage.NewStorage()
	if err != nil {
		log.Printf("Warning: configuration storage unavailable: %v (settings won't persist)", err)
		protocol = uci.New(eng)
	} else {
		if first, err := store.IsFirstLaunch(); err == nil && first {
			log.Printf("First launch: using default engine configuration")
			store.MarkFirstLaunchComplete()
		}
		protocol = uci.NewWithStorage(eng, store)
		protocol.ApplyStoredConfig()
	}

	protocol.Run()
}

// autoLoadNNUE attempts to load NNUE weights from standard locations
func autoLoadNNUE(eng *engine.Engine) error {
	// Try multiple locations in order of preference
	searchPaths := []string{
		getAppSupportDir(),                    // ~/Library/Application Support/chessplay/nnue/
		filepath.Join(getHomeDir(), ".chessplay", "nnue"), // ~/.chessplay/nnue/
		"./nnue",                              // ./nnue/ (current directory)
		".",                                   // current directory
	}

	for _, dir := range searchPaths {
		path := filepath.Join(dir, defaultNetFile)

		if fileExists(path) {
			if err := eng.LoadNNUE(path); err != nil {
				log.Printf("Failed to load NNUE from %s: %v", dir, err)
				continue
			}
			eng.SetUseNNUE(true)
			log.Printf("NNUE loaded from %s", dir)
			return nil
		}
	}

	return os.ErrNotExist
}

// getAppSupportDir returns the application support directory for chessplay
func getAppSupportDir() string {
	home := getHomeDir()
	// macOS: ~/Library/Application Support/chessplay/nnue/
	return filepath.Join(home, "Library", "Application Support", "chessplay", "nnue")
}

// getHomeDir returns the user's home directory
func getHomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
