package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"anomserver/internal/model"
	"anomserver/internal/repository/sqlite"
)

// backfill re-registers artifact files found on disk into the database,
// for recovering after a database loss or a manual restore of the data
// directory. Files are matched to sessions by the short-id prefix baked
// into artifact filenames.
func main() {
	dataDir := flag.String("data", "data", "Artifact data directory")
	dbPath := flag.String("db", filepath.Join("data", "sessions.db"), "Database path")
	flag.Parse()

	fmt.Printf("Backfilling artifacts from %s into %s\n", *dataDir, *dbPath)

	db, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	shortToID, keyToID, err := sessionIndex(db)
	if err != nil {
		log.Fatalf("Failed to load sessions: %v", err)
	}
	if len(shortToID) == 0 {
		fmt.Println("No sessions in database; nothing to backfill")
		return
	}

	artifacts := sqlite.NewArtifactRepository(db)

	categories := []string{
		model.CategoryOriginal,
		model.CategoryClip,
		model.CategoryGroundTruth,
		model.CategorySummary,
		model.CategoryCombined,
		model.CategoryProcessed,
	}

	inserted, skipped := 0, 0
	for _, category := range categories {
		dir := filepath.Join(*dataDir, category)
		files, err := os.ReadDir(dir)
		if err != nil {
			continue
		}

		for _, file := range files {
			if file.IsDir() {
				continue
			}

			sessionID := matchSession(category, file.Name(), shortToID, keyToID)
			if sessionID == "" {
				log.Printf("⚠️  Skipping %s/%s: no matching session", category, file.Name())
				skipped++
				continue
			}

			exists, err := artifacts.Exists(sessionID, category, file.Name())
			if err != nil {
				log.Fatalf("Failed to check artifact %s: %v", file.Name(), err)
			}
			if exists {
				skipped++
				continue
			}

			info, err := file.Info()
			if err != nil {
				log.Printf("⚠️  Failed to get info for %s: %v", file.Name(), err)
				skipped++
				continue
			}

			_, err = artifacts.Insert(&model.Artifact{
				SessionID: sessionID,
				Category:  category,
				Filename:  file.Name(),
				FilePath:  filepath.Join(dir, file.Name()),
				FileSize:  info.Size(),
				CreatedAt: time.Now(),
			})
			if err != nil {
				log.Fatalf("Failed to insert artifact %s: %v", file.Name(), err)
			}
			inserted++
		}
	}

	fmt.Printf("✅ Backfilled %d artifacts\n", inserted)
	if skipped > 0 {
		fmt.Printf("⚠️  Skipped %d files (already registered or unmatched)\n", skipped)
	}
}

// sessionIndex maps short session ids and original-video keys to full ids.
func sessionIndex(db *sqlite.DB) (map[string]string, map[string]string, error) {
	db.RLock()
	defer db.RUnlock()

	rows, err := db.Conn().Query(`SELECT id, original FROM sessions`)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	shortToID := make(map[string]string)
	keyToID := make(map[string]string)
	for rows.Next() {
		var id, original string
		if err := rows.Scan(&id, &original); err != nil {
			return nil, nil, err
		}
		short := id
		if len(short) > 8 {
			short = short[:8]
		}
		shortToID[short] = id
		keyToID[strings.TrimSuffix(original, filepath.Ext(original))] = id
	}
	return shortToID, keyToID, rows.Err()
}

// matchSession recovers the owning session from an artifact filename.
func matchSession(category, filename string, shortToID, keyToID map[string]string) string {
	name := strings.TrimSuffix(filename, filepath.Ext(filename))

	switch category {
	case model.CategoryOriginal:
		// <short>_<original filename>
		if short, _, ok := strings.Cut(name, "_"); ok {
			return shortToID[short]
		}
	case model.CategoryClip:
		// clip_<short>_<start frame>
		parts := strings.Split(name, "_")
		if len(parts) == 3 && parts[0] == "clip" {
			return shortToID[parts[1]]
		}
	case model.CategoryCombined, model.CategoryProcessed, model.CategorySummary:
		// combined_<short>, processed_<short>, summary_<short>
		if _, short, ok := strings.Cut(name, "_"); ok {
			return shortToID[short]
		}
	case model.CategoryGroundTruth:
		// <video key>_groundtruth
		key := strings.TrimSuffix(name, "_groundtruth")
		return keyToID[key]
	}
	return ""
}
