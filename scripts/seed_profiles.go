// seed_profiles.go — standalone script to push an attendee profiles file into a running Matchmaker.
//
// Usage:
//
//	go run scripts/seed_profiles.go -in data/profiles.json -api http://localhost:8600 -token $MATCHMAKER_ADMIN_TOKEN
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/MikeSquared-Agency/Matchmaker/internal/profile"
)

type ingestRequest struct {
	Profiles  []profile.Profile `json:"profiles"`
	Overwrite bool              `json:"overwrite"`
}

func main() {
	inPath := flag.String("in", "data/profiles.json", "path to profiles JSON file")
	apiURL := flag.String("api", "http://localhost:8600", "Matchmaker API base URL")
	token := flag.String("token", "", "admin bearer token")
	merge := flag.Bool("merge", false, "merge by id instead of replacing runtime profiles")
	dryRun := flag.Bool("dry-run", false, "print profiles without posting")
	flag.Parse()

	profiles, err := profile.LoadFile(*inPath)
	if err != nil {
		log.Fatalf("load profiles: %v", err)
	}
	if err := profile.ValidateAll(profiles); err != nil {
		log.Fatalf("validate profiles: %v", err)
	}
	log.Printf("parsed %d profiles from %s", len(profiles), *inPath)

	if *dryRun {
		for i, p := range profiles {
			fmt.Printf("[%d] %s (%s, %s @ %s)\n", i+1, p.ID, p.Name, p.Title, p.Organization)
		}
		return
	}

	body, err := json.Marshal(ingestRequest{Profiles: profiles, Overwrite: !*merge})
	if err != nil {
		log.Fatalf("encode request: %v", err)
	}
	req, err := http.NewRequest("POST", *apiURL+"/api/v1/profiles/ingest", bytes.NewReader(body))
	if err != nil {
		log.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if *token != "" {
		req.Header.Set("Authorization", "Bearer "+*token)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("post profiles: %v", err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		log.Fatalf("ingest failed: status %d: %s", resp.StatusCode, respBody)
	}
	log.Printf("done: %s", bytes.TrimSpace(respBody))
}
