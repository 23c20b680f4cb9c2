package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/AjjayK/Kronia-Pesticide-LLM/internal/app"
	"github.com/AjjayK/Kronia-Pesticide-LLM/internal/common"
	"github.com/AjjayK/Kronia-Pesticide-LLM/internal/models"
)

// repl is the interactive chat loop. Sidebar-style controls are exposed as
// slash commands; everything else is sent through the question pipeline.
type repl struct {
	app  *app.App
	conv *models.Conversation
}

func newREPL(application *app.App, userID string) *repl {
	if userID == "" {
		userID = "local"
	}

	conv := models.NewConversation(common.NewSessionID(), userID)

	// Restore the user's saved location, if any
	settings, err := application.StorageManager.SettingsStorage().Get(context.Background(), userID)
	if err == nil {
		conv.Location = settings
		application.Logger.Info().
			Str("user_id", userID).
			Str("location", settings.LocationName).
			Msg("Loaded saved location settings")
	}

	return &repl{
		app:  application,
		conv: conv,
	}
}

func (r *repl) run() error {
	fmt.Println("Ask about pesticide products. Commands: /product <name>, /image <path>, /location <name> <lat> <lon>, /reset, /quit")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := r.handleCommand(line); quit {
				return nil
			}
			continue
		}

		r.ask(line)
	}
}

func (r *repl) handleCommand(line string) (quit bool) {
	fields := strings.Fields(line)
	command := fields[0]
	args := fields[1:]

	switch command {
	case "/quit", "/exit":
		return true

	case "/reset":
		r.conv.Reset()
		fmt.Println("Conversation cleared.")

	case "/product":
		r.setProduct(args)

	case "/products":
		for _, product := range r.app.CatalogService.Products("", "") {
			fmt.Println("  " + product)
		}

	case "/image":
		r.analyzeImage(args)

	case "/location":
		r.setLocation(args)

	default:
		fmt.Printf("Unknown command %s\n", command)
	}

	return false
}

func (r *repl) setProduct(args []string) {
	if len(args) == 0 {
		fmt.Printf("Current product filter: %s\n", r.conv.ProductFilter)
		return
	}

	product := strings.Join(args, " ")
	r.conv.ProductFilter = product
	if strings.EqualFold(product, models.FilterAll) {
		r.conv.ProductFilter = models.FilterAll
		fmt.Println("Searching across all products.")
		return
	}
	fmt.Printf("Product filter set to %q.\n", product)
}

func (r *repl) analyzeImage(args []string) {
	if len(args) == 0 {
		fmt.Println("Usage: /image <path>")
		return
	}

	path := strings.Join(args, " ")
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Could not read image: %v\n", err)
		return
	}

	mimeType := "image/jpeg"
	if strings.EqualFold(filepath.Ext(path), ".png") {
		mimeType = "image/png"
	}

	analysis, err := r.app.VisionService.Analyze(context.Background(), data, mimeType, "")
	if err != nil {
		fmt.Printf("Image analysis failed: %v\n", err)
		return
	}

	r.conv.ImageAnalysis = analysis
	fmt.Println(analysis)
}

func (r *repl) setLocation(args []string) {
	if len(args) == 0 {
		if r.conv.Location != nil {
			fmt.Printf("Current location: %s (%.4f, %.4f)\n", r.conv.Location.LocationName, r.conv.Location.Latitude, r.conv.Location.Longitude)
		} else {
			fmt.Println("No location set. Usage: /location <name> <lat> <lon>")
		}
		return
	}

	if len(args) < 3 {
		fmt.Println("Usage: /location <name> <lat> <lon>")
		return
	}

	lat, err := strconv.ParseFloat(args[len(args)-2], 64)
	if err != nil {
		fmt.Printf("Invalid latitude: %v\n", err)
		return
	}
	lon, err := strconv.ParseFloat(args[len(args)-1], 64)
	if err != nil {
		fmt.Printf("Invalid longitude: %v\n", err)
		return
	}

	settings := &models.UserSettings{
		UserID:       r.conv.UserID,
		LocationName: strings.Join(args[:len(args)-2], " "),
		Latitude:     lat,
		Longitude:    lon,
	}

	if err := r.app.StorageManager.SettingsStorage().Upsert(context.Background(), settings); err != nil {
		fmt.Printf("Could not save location: %v\n", err)
		return
	}

	r.conv.Location = settings
	fmt.Printf("Location set to %s.\n", settings.LocationName)
}

func (r *repl) ask(question string) {
	result, err := r.app.ChatService.Ask(context.Background(), r.conv, question)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Println(result.Answer)
	printCitations(result.Citations)
}

func printCitations(citations []models.Citation) {
	if len(citations) == 0 {
		return
	}
	fmt.Println("\nSources:")
	for _, citation := range citations {
		fmt.Printf("  %s\n    %s\n", filepath.Base(citation.Source), citation.URL)
	}
}
