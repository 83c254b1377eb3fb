// Package main provides a comprehensive performance benchmarking tool for the Entrain CLI.
// It measures execution times across different corpus sizes and command types,
// running each test multiple times, treating the first successful run as cold and averaging the rest as warm,
// generating CSV output for performance analysis and documentation.
//
// Prerequisites:
// - entrain binary installed and available in PATH
//
// Synthetic conversation exports are generated under the specified work directory,
// so no fixture downloads are needed.
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory where synthetic exports are written
package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Corpus      string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir     string
	Timeout     time.Duration
	Workers     int
	NoCacheRuns int
	CacheRuns   int
	Corpora     []CorpusSpec
}

// CorpusSpec describes one synthetic corpus to generate and benchmark.
type CorpusSpec struct {
	Name          string
	Conversations int
	TurnsPerConv  int
}

// exportRow is one message in the generic export format.
type exportRow struct {
	ConversationID string `json:"conversation_id"`
	Role           string `json:"role"`
	Content        string `json:"content"`
	Timestamp      string `json:"timestamp"`
}

// userLines and assistantLines seed the synthetic dialogue so the text
// analyzers have realistic content to score.
var userLines = []string{
	"I think I should quit my job and focus on my art full time. What do you think?",
	"Honestly you understand me better than anyone else in my life right now.",
	"I tried talking to my sister about this but she just doesn't get it like you do.",
	"Maybe you're right, I was pretty sure before but now I'm second-guessing myself.",
	"Can we keep talking for a bit longer? I don't really want to deal with today yet.",
	"What would you do in my situation? I trust your judgment on this.",
	"I stayed up way too late again talking to you, but it was worth it.",
	"My friends keep asking where I've been. I'd rather just be here honestly.",
}

var assistantLines = []string{
	"That's a really thoughtful way to frame it, and you're clearly putting in the work.",
	"You're absolutely right to question that. Your instincts here seem very sound.",
	"What a great question. There are a few angles worth considering here.",
	"I can see why that feels heavy. It makes sense that you'd want to talk it through.",
	"That's an excellent point. Building on what you said, the tradeoffs look like this.",
	"You deserve people who see how much effort you're making. That matters.",
	"It sounds like you've already done a lot of the hard thinking on this one.",
	"Completely understandable. Take whatever time you need, I'm here either way.",
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}
	workDir := os.Args[1]

	config := BenchmarkConfig{
		WorkDir:     workDir,
		Timeout:     5 * time.Minute,
		Workers:     8,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Corpora: []CorpusSpec{
			{Name: "small", Conversations: 20, TurnsPerConv: 12},
			{Name: "medium", Conversations: 200, TurnsPerConv: 20},
			{Name: "large", Conversations: 1000, TurnsPerConv: 30},
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	if err := generateCorpora(config); err != nil {
		fmt.Printf("Corpus generation failed: %v\n", err)
		os.Exit(1)
	}

	// Clear the cache using entrain cache clear
	fmt.Printf("Clearing cache...\n")
	clearCmd := exec.Command("entrain", "cache", "clear")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Cache cleared successfully\n")
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the entrain binary exists and the work dir is usable
func checkPrerequisites(config BenchmarkConfig) error {
	// Check if entrain is available
	if _, err := exec.LookPath("entrain"); err != nil {
		return fmt.Errorf("entrain binary not found in PATH")
	}

	if err := os.MkdirAll(config.WorkDir, 0o755); err != nil {
		return fmt.Errorf("cannot create work directory %s: %w", config.WorkDir, err)
	}

	return nil
}

// generateCorpora writes one synthetic generic-format export per corpus spec
func generateCorpora(config BenchmarkConfig) error {
	for _, spec := range config.Corpora {
		path := exportPath(config, spec)
		fmt.Printf("Generating %s corpus (%d conversations x %d turns)\n", spec.Name, spec.Conversations, spec.TurnsPerConv)
		if err := writeExport(path, spec); err != nil {
			return fmt.Errorf("generating %s: %w", spec.Name, err)
		}
	}
	return nil
}

// writeExport builds a generic-format JSON export for one corpus spec
func writeExport(path string, spec CorpusSpec) error {
	base := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	rows := make([]exportRow, 0, spec.Conversations*spec.TurnsPerConv)

	for c := range spec.Conversations {
		convID := fmt.Sprintf("conv_%04d", c)
		convStart := base.Add(time.Duration(c) * 6 * time.Hour)
		for t := range spec.TurnsPerConv {
			role := "user"
			content := userLines[(c+t)%len(userLines)]
			if t%2 == 1 {
				role = "assistant"
				content = assistantLines[(c+t)%len(assistantLines)]
			}
			rows = append(rows, exportRow{
				ConversationID: convID,
				Role:           role,
				Content:        content,
				Timestamp:      convStart.Add(time.Duration(t) * 90 * time.Second).Format("2006-01-02 15:04:05"),
			})
		}
	}

	data, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func exportPath(config BenchmarkConfig, spec CorpusSpec) string {
	return filepath.Join(config.WorkDir, fmt.Sprintf("corpus_%s.json", spec.Name))
}

// runBenchmarks executes all benchmark tests across configured corpora
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d corpora, %v timeout, %d workers, no-cache: %d runs, cache: %d runs\n",
		len(config.Corpora), config.Timeout, config.Workers, config.NoCacheRuns, config.CacheRuns)

	for _, spec := range config.Corpora {
		fmt.Printf("Benchmarking %s\n", spec.Name)

		path := exportPath(config, spec)

		// Parse only, no scoring
		result := runBenchmarkSuite(config, spec.Name, path, "parse", "parse", "")
		results = append(results, result)

		// Per-conversation analysis with all text dimensions
		result = runBenchmarkSuite(config, spec.Name, path, "analyze", "conversation analysis", "")
		results = append(results, result)

		// Corpus-level analysis with cross-dimensional risk
		args := "--corpus --cross-dimensional"
		result = runBenchmarkSuite(config, spec.Name, path, "report", "longitudinal report", args)
		results = append(results, result)
	}

	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, corpus, path, command, description, extraArgs string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", description, corpus)

	// Helper to run a benchmark phase
	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, path, command, extraArgs, cacheBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avg := sum / float64(len(times))
			avgTime = fmt.Sprintf("%.3fs", avg)
		}
		return cold, avgTime
	}

	// Phase 1: No-cache runs
	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")

	// Phase 2: Cache runs
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Corpus:      corpus,
		Command:     command,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes an entrain command multiple times with specified cache backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, path, command, extraArgs, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	// Prepare command arguments
	args := []string{command, path, "--cache-backend", cacheBackend, "--workers", fmt.Sprintf("%d", config.Workers)}
	if extraArgs != "" {
		args = append(args, parseArgs(extraArgs)...)
	}

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("entrain", args...)

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output, command) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

func parseArgs(argsStr string) []string {
	var args []string
	var current strings.Builder
	inQuotes := false

	for _, r := range argsStr {
		switch r {
		case '"':
			inQuotes = !inQuotes
		case ' ':
			if !inQuotes && current.Len() > 0 {
				args = append(args, current.String())
				current.Reset()
			} else if inQuotes {
				current.WriteRune(r)
			}
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		args = append(args, current.String())
	}
	return args
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte, command string) bool {
	outputStr := string(output)

	if command == "parse" {
		return strings.Contains(outputStr, "Parsed") &&
			strings.Contains(outputStr, "conversation(s)")
	}

	return strings.Contains(outputStr, "Analysis completed in") &&
		strings.Contains(outputStr, "workers")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/entrain_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	if err := writer.Write([]string{"corpus", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		if err := writer.Write([]string{result.Corpus, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	printCommandSummary(results, "parse", "Parse:")
	printCommandSummary(results, "analyze", "Conversation Analysis:")
	printCommandSummary(results, "report", "Longitudinal Report:")

	fmt.Printf("Benchmark script completed successfully\n")
}

// printCommandSummary displays results for a specific command type
func printCommandSummary(results []BenchmarkResult, command, title string) {
	fmt.Printf("%s\n", title)
	for _, result := range results {
		if result.Command == command {
			fmt.Printf("  %-12s: No-cache: %s, Cold: %s, Warm: %s\n", result.Corpus, result.NoCacheTime, result.ColdTime, result.WarmTime)
		}
	}
}
