package classifier

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/kaptinlin/jsonrepair"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/reviewstation/engine/pkg/models"
)

// AIConfig controls the batch fallback's subprocess and scheduling
// behavior. BatchSize and MaxConcurrent are expected pre-clamped by
// internal/config, but AIBatch clamps defensively too.
type AIConfig struct {
	BatchSize     int
	MaxConcurrent int
	Command       string // empty means auto-discover "claude"
	Model         string
	RatePerSecond float64
}

// aiLabelResult mirrors the taxonomy-validated shape of one hunk's AI
// classification.
type aiLabelResult struct {
	Label     []string `json:"label"`
	Reasoning string   `json:"reasoning"`
}

// ProgressFunc is invoked once per completed batch with the hunk ids in
// that batch and whatever results were parsed for them (empty on
// subprocess error).
type ProgressFunc func(batchIDs []string, results map[string]*models.ClassificationResult)

// AIBatch runs the AI fallback over hunks the static engine left
// unclassified: bounded-concurrency batches, each invoking a subprocess,
// each response JSON-extracted and taxonomy validated. The response
// pipeline follows internal/llm's json_repair.go/response_processor.go
// shape; the subprocess discovery and exec.Command wrapping follows
// shhac-prtea/internal/claude's finder.go/executor.go, since that repo
// invokes a CLI subprocess rather than an LLM HTTP API.
func AIBatch(ctx context.Context, hunks []*models.Hunk, tax *Taxonomy, cfg AIConfig, log zerolog.Logger, onProgress ProgressFunc) (map[string]*models.ClassificationResult, error) {
	if len(hunks) == 0 {
		return map[string]*models.ClassificationResult{}, nil
	}

	batchSize := clampInt(cfg.BatchSize, 1, 20)
	maxConcurrent := clampInt(cfg.MaxConcurrent, 1, 10)

	cmdPath, leadingArgs, cmdErr := resolveCommand(cfg.Command)
	if cmdErr != nil {
		return nil, cmdErr
	}

	batches := partitionHunks(hunks, batchSize)
	timeout := time.Duration(60) * time.Second
	if per := 30 * time.Second * time.Duration(len(batches)); per > timeout {
		timeout = per
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
	}

	sem := semaphore.NewWeighted(int64(maxConcurrent))
	var mu sync.Mutex
	results := make(map[string]*models.ClassificationResult)
	var succeeded, failed int

	// batches run under an errgroup so a context cancellation (timeout)
	// propagates, but an individual batch's subprocess failure does not
	// abort the group — it is logged and counted, per the "fail hard only
	// if every batch failed" partial-failure policy.
	g, gctx := errgroup.WithContext(ctx)
	for _, batch := range batches {
		batch := batch
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)
			if limiter != nil {
				if err := limiter.Wait(gctx); err != nil {
					return err
				}
			}
			ids := hunkIDs(batch)
			parsed, err := runBatch(gctx, cmdPath, leadingArgs, cfg.Model, batch, tax, log)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Warn().Err(err).Strs("hunk_ids", ids).Msg("ai classifier batch failed")
				failed++
				if onProgress != nil {
					onProgress(ids, map[string]*models.ClassificationResult{})
				}
				return nil
			}
			succeeded++
			for id, cr := range parsed {
				results[id] = cr
			}
			if onProgress != nil {
				onProgress(ids, parsed)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("ai classifier: %w", err)
	}

	if succeeded == 0 && failed > 0 {
		return nil, fmt.Errorf("ai classifier: all %d batches failed", failed)
	}
	if failed > 0 {
		log.Warn().Int("failed_batches", failed).Int("succeeded_batches", succeeded).Msg("ai classifier: partial batch failure")
	}
	return results, nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func partitionHunks(hunks []*models.Hunk, size int) [][]*models.Hunk {
	var out [][]*models.Hunk
	for i := 0; i < len(hunks); i += size {
		end := i + size
		if end > len(hunks) {
			end = len(hunks)
		}
		out = append(out, hunks[i:end])
	}
	return out
}

func hunkIDs(batch []*models.Hunk) []string {
	ids := make([]string, len(batch))
	for i, h := range batch {
		ids[i] = h.ID
	}
	return ids
}

// resolveCommand finds the subprocess to run and any fixed leading
// arguments. A user-configured custom command is trusted input,
// tokenized by whitespace: this misparses quoted paths containing
// spaces, left to the surrounding shell rather than deciding between
// shell-style tokenization and an explicit argv vector. The default
// discovers the "claude" binary via PATH / common install locations
// with no leading arguments.
func resolveCommand(custom string) (path string, leadingArgs []string, err error) {
	if custom != "" {
		fields := strings.Fields(custom)
		if len(fields) == 0 {
			return "", nil, fmt.Errorf("ai classifier: empty custom command")
		}
		return fields[0], fields[1:], nil
	}
	p, err := findClaudeBinary()
	return p, nil, err
}

func findClaudeBinary() (string, error) {
	names := []string{"claude"}
	if isWindows() {
		names = []string{"claude.exe", "claude.cmd", "claude.bat"}
	}
	for _, n := range names {
		if p, err := exec.LookPath(n); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("ai classifier subprocess not found: ensure 'claude' is installed and on PATH")
}

func runBatch(ctx context.Context, cmdPath string, leadingArgs []string, model string, batch []*models.Hunk, tax *Taxonomy, log zerolog.Logger) (map[string]*models.ClassificationResult, error) {
	prompt := buildPrompt(batch, tax)

	args := append([]string{}, leadingArgs...)
	args = append(args, "--print")
	if model != "" {
		args = append(args, "--model", model)
	}
	args = append(args, "--setting-sources", "", "--disable-slash-commands", "--strict-mcp-config", "-p", prompt)

	cmd := exec.CommandContext(ctx, cmdPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		errMsg := strings.TrimSpace(stderr.String())
		if errMsg == "" {
			errMsg = err.Error()
		}
		return nil, fmt.Errorf("claude exited with error: %s", errMsg)
	}

	raw := stdout.String()
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("claude produced empty output")
	}

	parsed, err := parseResponse(raw, batch, tax, log)
	if err != nil {
		return nil, fmt.Errorf("unparseable JSON from classifier: %w", err)
	}
	return parsed, nil
}

// buildPrompt embeds the allowed taxonomy, strict defaulting
// instructions, and each hunk's id/file/lines (spec.md §4.4).
func buildPrompt(batch []*models.Hunk, tax *Taxonomy) string {
	var b strings.Builder
	b.WriteString("You are classifying code-review diff hunks by how much reviewer attention they need.\n")
	b.WriteString("Allowed labels: ")
	b.WriteString(strings.Join(tax.PromptLabels(), ", "))
	b.WriteString("\n\n")
	b.WriteString("Rules: default to an empty label list. Apply a label only if it describes the ENTIRE hunk, not part of it. Never invent a label outside the allowed list.\n\n")
	if len(batch) == 1 {
		h := batch[0]
		b.WriteString("Respond with exactly one JSON object: {\"label\": [...], \"reasoning\": \"...\"}\n\n")
		writeHunk(&b, h)
	} else {
		b.WriteString("Respond with exactly one JSON object keyed by hunk id: {\"<hunk_id>\": {\"label\": [...], \"reasoning\": \"...\"}, ...}\n\n")
		for _, h := range batch {
			writeHunk(&b, h)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func writeHunk(b *strings.Builder, h *models.Hunk) {
	fmt.Fprintf(b, "Hunk %s (%s):\n", h.ID, h.FilePath)
	for _, l := range h.Lines {
		prefix := " "
		switch l.Type {
		case models.LineAdded:
			prefix = "+"
		case models.LineRemoved:
			prefix = "-"
		}
		fmt.Fprintf(b, "%s%s\n", prefix, l.Content)
	}
}

// parseResponse extracts a JSON object from mixed text/markdown-fenced
// output, repairs it if malformed, unmarshals into the single-hunk or
// multi-hunk shape depending on batch size, and taxonomy-validates every
// returned label.
func parseResponse(raw string, batch []*models.Hunk, tax *Taxonomy, log zerolog.Logger) (map[string]*models.ClassificationResult, error) {
	jsonStr := extractJSON(raw)
	if jsonStr == "" {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	if repaired, err := jsonrepair.JSONRepair(jsonStr); err == nil {
		jsonStr = repaired
	}

	out := make(map[string]*models.ClassificationResult)

	if len(batch) == 1 {
		var single aiLabelResult
		if err := json.Unmarshal([]byte(jsonStr), &single); err != nil {
			return nil, err
		}
		valid, dropped := tax.ValidateAll(single.Label)
		if len(dropped) > 0 {
			log.Info().Strs("dropped_labels", dropped).Msg("ai classifier: dropped labels outside taxonomy")
		}
		out[batch[0].ID] = &models.ClassificationResult{Label: valid, Reasoning: single.Reasoning}
		return out, nil
	}

	var multi map[string]aiLabelResult
	if err := json.Unmarshal([]byte(jsonStr), &multi); err != nil {
		return nil, err
	}
	for _, h := range batch {
		r, ok := multi[h.ID]
		if !ok {
			continue
		}
		valid, dropped := tax.ValidateAll(r.Label)
		if len(dropped) > 0 {
			log.Info().Strs("dropped_labels", dropped).Str("hunk_id", h.ID).Msg("ai classifier: dropped labels outside taxonomy")
		}
		out[h.ID] = &models.ClassificationResult{Label: valid, Reasoning: r.Reasoning}
	}
	return out, nil
}

// extractJSON pulls a JSON object/array out of a response that may wrap
// it in prose or a markdown code fence, following
// internal/llm/response_processor.go's extractJSON.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "{") || strings.HasPrefix(raw, "[") {
		return raw
	}

	if strings.Contains(raw, "```") {
		scanner := bufio.NewScanner(strings.NewReader(raw))
		var fenced []string
		inFence := false
		for scanner.Scan() {
			line := scanner.Text()
			if strings.HasPrefix(strings.TrimSpace(line), "```") {
				inFence = !inFence
				continue
			}
			if inFence {
				fenced = append(fenced, line)
			}
		}
		if len(fenced) > 0 {
			return strings.Join(fenced, "\n")
		}
	}

	start := strings.IndexAny(raw, "{[")
	if start == -1 {
		return ""
	}
	open := raw[start]
	closeByte := byte('}')
	if open == '[' {
		closeByte = ']'
	}
	depth := 0
	for i := start; i < len(raw); i++ {
		switch raw[i] {
		case open:
			depth++
		case closeByte:
			depth--
			if depth == 0 {
				return raw[start : i+1]
			}
		}
	}
	return ""
}

func isWindows() bool {
	return runtime.GOOS == "windows"
}
