package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/schollz/progressbar/v3"

	"musicren/cmd"
	"musicren/config"
	"musicren/services"
	"musicren/types"
)

func main() {
	config.LoadDotEnv()

	var (
		dir         string
		lyrics      bool
		recognition bool
		covers      bool
		apiKey      string
		yes         bool
		workers     int
		server      bool
		port        int
	)

	flag.StringVar(&dir, "dir", "", "Directory containing the audio files to process")
	flag.BoolVar(&lyrics, "lyrics", false, "Find and embed synchronized lyrics")
	flag.BoolVar(&recognition, "recognition", false, "Recognize untagged files by acoustic fingerprint")
	flag.BoolVar(&covers, "covers", false, "Only install missing cover art, skip everything else")
	flag.StringVar(&apiKey, "api-key", "", "AcoustID API key (overrides ACOUSTID_API_KEY)")
	flag.BoolVar(&yes, "yes", false, "Answer yes to all prompts")
	flag.IntVar(&workers, "workers", 0, "Number of concurrent workers (default 4)")
	flag.BoolVar(&server, "server", false, "Start in web server mode")
	flag.IntVar(&port, "port", 8080, "Port for web server mode")
	flag.Parse()

	// Server mode takes precedence
	if server {
		cmd.StartWebServer(port)
		return
	}

	if dir == "" {
		dir = config.GetMusicDir()
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		log.Fatalf("You must provide a valid directory to process: %s", dir)
	}

	if apiKey == "" {
		apiKey = config.GetAcoustIDKey()
	}

	fileService := services.NewFileService()
	tagWriter := services.NewTagWriter()
	coverResolver := services.NewCoverResolver()
	lyricsResolver := services.NewLyricsResolver()
	recognizer := services.NewRecognizer(services.NewFingerprinter(), services.NewAcoustIDClient(apiKey), coverResolver)
	enricher := services.NewFileEnricher(fileService, recognizer, coverResolver, lyricsResolver, tagWriter)
	coordinator := services.NewBatchCoordinator(enricher, workers)
	renamer := services.NewRenameEngine(fileService)

	paths, err := fileService.AudioFilePaths(dir)
	if err != nil {
		log.Fatalf("Cannot list audio files in %s: %s", dir, err)
	}
	if len(paths) == 0 {
		fmt.Printf("No audio files found in %s\n", dir)
		return
	}

	if covers {
		runCoverPass(coordinator, paths)
		return
	}

	runEnrichmentPass(coordinator, paths, recognition, lyrics)
	runRenamePass(renamer, dir, yes)
}

// runCoverPass installs missing cover art and prints a summary.
func runCoverPass(coordinator services.BatchCoordinator, paths []string) {
	bar := progressbar.Default(int64(len(paths)), "Installing covers")
	outcomes := coordinator.ProcessCovers(paths, func(done, total int, path string) {
		bar.Add(1)
	})

	embedded, skipped, failed := 0, 0, 0
	for path, outcome := range outcomes {
		switch {
		case outcome.Embedded:
			embedded++
		case outcome.Skipped:
			skipped++
		default:
			failed++
			log.Printf("Cover failed for %s: %s", path, outcome.Error)
		}
	}
	fmt.Printf("\nCovers: %d embedded, %d already present, %d failed\n", embedded, skipped, failed)
}

// runEnrichmentPass processes every file and prints a per-file report.
func runEnrichmentPass(coordinator services.BatchCoordinator, paths []string, recognition, lyrics bool) {
	bar := progressbar.Default(int64(len(paths)), "Processing")
	outcomes := coordinator.ProcessAll(paths, recognition, lyrics, func(done, total int, path string) {
		bar.Add(1)
	})
	fmt.Println()

	sorted := make([]string, 0, len(outcomes))
	for path := range outcomes {
		sorted = append(sorted, path)
	}
	sort.Strings(sorted)

	for _, path := range sorted {
		outcome := outcomes[path]
		name := filepath.Base(path)

		if outcome.Error != "" {
			fmt.Printf("  %s: failed (%s)\n", name, outcome.Error)
			continue
		}

		var parts []string
		if outcome.Recognition {
			parts = append(parts, fmt.Sprintf("recognized as %s - %s (score %.2f)", outcome.Artist, outcome.Title, outcome.Score))
		} else if outcome.RecognitionError != "" {
			parts = append(parts, fmt.Sprintf("not recognized: %s", outcome.RecognitionError))
		}
		if outcome.MetadataWritten {
			parts = append(parts, "tags written")
		}
		if outcome.LyricsEmbedded {
			parts = append(parts, "lyrics embedded")
		} else if outcome.LyricsFound && outcome.EmbedError != "" {
			parts = append(parts, fmt.Sprintf("lyrics found but not embedded: %s", outcome.EmbedError))
		} else if outcome.LyricsError != "" {
			parts = append(parts, fmt.Sprintf("lyrics: %s", outcome.LyricsError))
		}
		if len(parts) == 0 {
			parts = append(parts, "no changes")
		}
		fmt.Printf("  %s: %s\n", name, strings.Join(parts, ", "))
	}
}

// runRenamePass renames files from their tags after confirmation and offers
// to undo the result.
func runRenamePass(renamer services.RenameEngine, dir string, yes bool) {
	if !yes && !confirm("Rename files based on their tags?") {
		return
	}

	changes, err := renamer.RenameByTags(dir)
	if err != nil {
		log.Fatalf("Rename failed: %s", err)
	}
	if len(changes) == 0 {
		fmt.Println("No files needed renaming.")
		return
	}

	printChanges(changes)

	if yes {
		return
	}
	if !confirm("Keep these names?") {
		restored, err := renamer.Undo(dir, changes)
		if err != nil {
			log.Fatalf("Undo failed: %s", err)
		}
		fmt.Printf("Restored %d original filenames\n", restored)
	}
}

func printChanges(changes types.ChangeSet) {
	newNames := make([]string, 0, len(changes))
	for newName := range changes {
		newNames = append(newNames, newName)
	}
	sort.Strings(newNames)

	fmt.Printf("Renamed %d files:\n", len(changes))
	for _, newName := range newNames {
		fmt.Printf("  %s -> %s\n", changes[newName], newName)
	}
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes"
}
