//go:build ignore

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dialproto/godial/internal/description"
)

// Statistics tracks parsing results
type Statistics struct {
	TotalFiles     int
	DeviceDocs     int
	AppDocs        int
	ParseSuccess   int
	ParseFailure   int
	RoundTripFails int
	AppStates      map[string]int
	FailedDocs     []FailedDoc
}

// FailedDoc stores information about parsing failures
type FailedDoc struct {
	File  string
	Kind  string
	Error string
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: validate-descriptions <directory-or-file>")
		fmt.Println("Example: validate-descriptions captures/descriptions/")
		fmt.Println("         validate-descriptions device-desc.xml")
		os.Exit(1)
	}

	path := os.Args[1]

	stats := Statistics{
		AppStates:  make(map[string]int),
		FailedDocs: []FailedDoc{},
	}

	// Check if path is directory or file
	info, err := os.Stat(path)
	if err != nil {
		fmt.Printf("Error accessing path: %v\n", err)
		os.Exit(1)
	}

	var files []string
	if info.IsDir() {
		// Find all XML files in directory
		pattern := filepath.Join(path, "*.xml")
		files, err = filepath.Glob(pattern)
		if err != nil {
			fmt.Printf("Error finding XML files: %v\n", err)
			os.Exit(1)
		}
		if len(files) == 0 {
			fmt.Printf("No XML files found in %s\n", path)
			os.Exit(1)
		}
	} else {
		// Single file
		files = []string{path}
	}

	fmt.Printf("=== DIAL Description Validator ===\n")
	fmt.Printf("Files to process: %d\n\n", len(files))

	// Process each file
	for _, file := range files {
		processFile(file, &stats)
	}

	// Print results
	printStatistics(&stats)
}

func processFile(filename string, stats *Statistics) {
	stats.TotalFiles++

	data, err := os.ReadFile(filename)
	if err != nil {
		fmt.Printf("Error reading file %s: %v\n", filename, err)
		return
	}

	text := string(data)

	// Device descriptions carry a UPnP <root> element; everything else is
	// treated as an app description.
	if strings.Contains(text, "urn:schemas-upnp-org:device-1-0") {
		processDeviceDoc(filename, text, stats)
		return
	}
	processAppDoc(filename, text, stats)
}

func processDeviceDoc(filename, text string, stats *Statistics) {
	stats.DeviceDocs++

	device, err := description.ParseDeviceDescription(text)
	if err != nil {
		stats.ParseFailure++
		stats.FailedDocs = append(stats.FailedDocs, FailedDoc{
			File:  filename,
			Kind:  "device",
			Error: fmt.Sprintf("parse error: %v", err),
		})
		return
	}
	stats.ParseSuccess++

	// Render the parsed identity back out and re-parse; the identities
	// must agree even though the serialized bytes differ.
	rendered, err := description.RenderDeviceDescription(device)
	if err != nil {
		stats.RoundTripFails++
		stats.FailedDocs = append(stats.FailedDocs, FailedDoc{
			File:  filename,
			Kind:  "device",
			Error: fmt.Sprintf("re-render error: %v", err),
		})
		return
	}

	reparsed, err := description.ParseDeviceDescription(rendered)
	if err != nil {
		stats.RoundTripFails++
		stats.FailedDocs = append(stats.FailedDocs, FailedDoc{
			File:  filename,
			Kind:  "device",
			Error: fmt.Sprintf("round-trip parse error: %v", err),
		})
		return
	}

	if reparsed.UUID != device.UUID || reparsed.FriendlyName != device.FriendlyName {
		stats.RoundTripFails++
		stats.FailedDocs = append(stats.FailedDocs, FailedDoc{
			File:  filename,
			Kind:  "device",
			Error: fmt.Sprintf("round-trip mismatch: %q/%q vs %q/%q", device.UUID, device.FriendlyName, reparsed.UUID, reparsed.FriendlyName),
		})
	}
}

func processAppDoc(filename, text string, stats *Statistics) {
	stats.AppDocs++

	app, err := description.ParseAppDescription(text)
	if err != nil {
		stats.ParseFailure++
		stats.FailedDocs = append(stats.FailedDocs, FailedDoc{
			File:  filename,
			Kind:  "app",
			Error: fmt.Sprintf("parse error: %v", err),
		})
		return
	}
	stats.ParseSuccess++
	stats.AppStates[string(app.InferredState())]++

	rendered, err := description.RenderAppDescription(app)
	if err != nil {
		stats.RoundTripFails++
		stats.FailedDocs = append(stats.FailedDocs, FailedDoc{
			File:  filename,
			Kind:  "app",
			Error: fmt.Sprintf("re-render error: %v", err),
		})
		return
	}

	reparsed, err := description.ParseAppDescription(rendered)
	if err != nil {
		stats.RoundTripFails++
		stats.FailedDocs = append(stats.FailedDocs, FailedDoc{
			File:  filename,
			Kind:  "app",
			Error: fmt.Sprintf("round-trip parse error: %v", err),
		})
		return
	}

	if reparsed.Name != app.Name || reparsed.Pid != app.Pid {
		stats.RoundTripFails++
		stats.FailedDocs = append(stats.FailedDocs, FailedDoc{
			File:  filename,
			Kind:  "app",
			Error: fmt.Sprintf("round-trip mismatch: %q/%q vs %q/%q", app.Name, app.Pid, reparsed.Name, reparsed.Pid),
		})
	}
}

func printStatistics(stats *Statistics) {
	fmt.Printf("\n========================================\n")
	fmt.Printf("VALIDATION RESULTS\n")
	fmt.Printf("========================================\n\n")

	fmt.Printf("Files Processed:    %d\n", stats.TotalFiles)
	fmt.Printf("Device Documents:   %d\n", stats.DeviceDocs)
	fmt.Printf("App Documents:      %d\n", stats.AppDocs)
	total := stats.ParseSuccess + stats.ParseFailure
	if total > 0 {
		fmt.Printf("Parse Success:      %d (%.2f%%)\n", stats.ParseSuccess,
			float64(stats.ParseSuccess)/float64(total)*100)
		fmt.Printf("Parse Failure:      %d (%.2f%%)\n", stats.ParseFailure,
			float64(stats.ParseFailure)/float64(total)*100)
	}
	fmt.Printf("Round-Trip Fails:   %d\n", stats.RoundTripFails)

	if len(stats.AppStates) > 0 {
		fmt.Printf("\n----------------------------------------\n")
		fmt.Printf("APP STATE DISTRIBUTION\n")
		fmt.Printf("----------------------------------------\n")
		for state, count := range stats.AppStates {
			percentage := float64(count) / float64(stats.AppDocs) * 100
			fmt.Printf("%-12s %d (%.2f%%)\n", state, count, percentage)
		}
	}

	if len(stats.FailedDocs) > 0 {
		fmt.Printf("\n----------------------------------------\n")
		fmt.Printf("FAILURES (%d total)\n", len(stats.FailedDocs))
		fmt.Printf("----------------------------------------\n")

		// Show first 10 failures
		maxShow := 10
		if len(stats.FailedDocs) > maxShow {
			fmt.Printf("(Showing first %d of %d failures)\n\n", maxShow, len(stats.FailedDocs))
		}

		for i, failed := range stats.FailedDocs {
			if i >= maxShow {
				break
			}
			fmt.Printf("\nFailure #%d:\n", i+1)
			fmt.Printf("  File: %s (%s description)\n", failed.File, failed.Kind)
			fmt.Printf("  Error: %s\n", failed.Error)
		}
	}

	fmt.Printf("\n========================================\n")
	if stats.ParseFailure == 0 && stats.RoundTripFails == 0 {
		fmt.Printf("✅ SUCCESS: All documents validated successfully!\n")
	} else {
		fmt.Printf("⚠️  ISSUES FOUND: %d documents failed\n", stats.ParseFailure+stats.RoundTripFails)
	}
	fmt.Printf("========================================\n")
}
