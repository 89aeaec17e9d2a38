package main

import (
	"bytes"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"os"
	"strings"
)

type sampleArtwork struct {
	title       string
	description string
	tags        string
	fill        color.RGBA
}

var samples = []sampleArtwork{
	{"Warli Harvest Dance", "Circle of dancers around the tarpa player", "warli, tribal, maharashtra", color.RGBA{0x8b, 0x45, 0x13, 0xff}},
	{"Madhubani Fish Pair", "Twin fish symbolising fertility", "madhubani, mithila, bihar", color.RGBA{0xd2, 0x69, 0x1e, 0xff}},
	{"Gond Tree of Life", "Dotted tree with birds and deer", "gond, tribal, madhya pradesh", color.RGBA{0x22, 0x8b, 0x22, 0xff}},
	{"Pattachitra Jagannath", "Cloth scroll painting from Puri", "pattachitra, odisha", color.RGBA{0xb2, 0x22, 0x22, 0xff}},
	{"Kalighat Cat with Prawn", "Bold brush strokes in the Kalighat style", "kalighat, bengal", color.RGBA{0x46, 0x82, 0xb4, 0xff}},
}

var contentIDs = []string{"warli-quiz", "madhubani-match", "gond-puzzle"}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	apiURL := "http://localhost:8080"
	if envURL := os.Getenv("API_URL"); envURL != "" {
		apiURL = envURL
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "populate":
		populateCmd(apiURL, args)
	case "leaderboard":
		leaderboardCmd(apiURL, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Gallery Seeder - Development tool for filling a local gallery

USAGE:
  seeder <command> [options]

COMMANDS:
  populate     Register artists, upload sample artworks and play games
  leaderboard  Print the leaderboard for a game
  help         Show this help message

ENVIRONMENT:
  API_URL   Backend API URL (default: http://localhost:8080)

EXAMPLES:
  # Create 3 artists with sample artworks and scores
  seeder populate

  # Create 5 artists, 4 games each
  seeder populate --artists=5 --games=4

  # Show the top 10 for the Warli quiz
  seeder leaderboard --content=warli-quiz`)
}

func populateCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("populate", flag.ExitOnError)
	artists := fs.Int("artists", 3, "Number of artist accounts to create")
	games := fs.Int("games", 2, "Game sessions to submit per artist")
	fs.Parse(args)

	if *artists < 1 || *artists > 50 {
		fmt.Println("Error: --artists must be between 1 and 50")
		os.Exit(1)
	}

	client := NewAPIClient(apiURL)

	fmt.Println("=== Gallery Seeder: Populate ===")
	fmt.Println()

	for i := 0; i < *artists; i++ {
		sample := samples[i%len(samples)]
		user, token, err := client.RegisterUser("artist", fmt.Sprintf("Artist %d", i+1))
		if err != nil {
			fmt.Printf("  [%d/%d] FAILED to create user: %v\n", i+1, *artists, err)
			os.Exit(1)
		}

		if err := client.SetRole(token, "artist"); err != nil {
			fmt.Printf("Warning: Failed to set role for %s: %v\n", user.Username, err)
		}

		image, err := renderSwatch(sample.fill)
		if err != nil {
			fmt.Printf("  [%d/%d] FAILED to render image: %v\n", i+1, *artists, err)
			os.Exit(1)
		}

		fileName := strings.ReplaceAll(strings.ToLower(sample.title), " ", "-") + ".png"
		artwork, err := client.UploadArtwork(token, sample.title, sample.description, sample.tags, fileName, image)
		if err != nil {
			fmt.Printf("  [%d/%d] FAILED to upload artwork: %v\n", i+1, *artists, err)
			os.Exit(1)
		}

		for g := 0; g < *games; g++ {
			contentID := contentIDs[(i+g)%len(contentIDs)]
			maxScore := 100
			score := rand.Intn(maxScore + 1)
			if err := client.SubmitScore(token, contentID, score, maxScore, 30+rand.Intn(240)); err != nil {
				fmt.Printf("Warning: Failed to submit score for %s: %v\n", user.Username, err)
			}
		}

		fmt.Printf("  [%d/%d] %s uploaded %q -> %s\n", i+1, *artists, user.Username, artwork.Title, artwork.ImageURL)
	}

	fmt.Println()
	fmt.Println("Done. Browse the gallery at GET /api/v1/artworks/public")
}

func leaderboardCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("leaderboard", flag.ExitOnError)
	content := fs.String("content", "", "Game or quiz id (empty for all)")
	limit := fs.Int("limit", 10, "Number of entries to show")
	fs.Parse(args)

	client := NewAPIClient(apiURL)
	entries, err := client.Leaderboard(*content, *limit)
	if err != nil {
		fmt.Printf("Failed to fetch leaderboard: %v\n", err)
		os.Exit(1)
	}

	if len(entries) == 0 {
		fmt.Println("No scores yet.")
		return
	}

	fmt.Printf("%-5s %-24s %-18s %s\n", "RANK", "PLAYER", "GAME", "SCORE")
	for _, e := range entries {
		fmt.Printf("%-5d %-24s %-18s %d/%d\n", e.Rank, e.DisplayName, e.ContentID, e.Score, e.MaxScore)
	}
}

// renderSwatch draws a small bordered square so each sample image is a real PNG.
func renderSwatch(fill color.RGBA) ([]byte, error) {
	const size = 64
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	border := color.RGBA{0xf5, 0xf5, 0xdc, 0xff}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if x < 4 || y < 4 || x >= size-4 || y >= size-4 {
				img.Set(x, y, border)
			} else {
				img.Set(x, y, fill)
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
