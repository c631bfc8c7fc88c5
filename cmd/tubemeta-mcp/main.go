package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/use-agent/tubemeta/models"
)

// client proxies tool calls to a running tubemeta API.
type client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func main() {
	apiURL := os.Getenv("TUBEMETA_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	c := &client{
		baseURL: strings.TrimRight(apiURL, "/"),
		apiKey:  os.Getenv("TUBEMETA_API_KEY"),
		// Batches are sequential and a single video can take ~35s.
		http: &http.Client{Timeout: 2 * time.Hour},
	}

	s := server.NewMCPServer(
		"tubemeta",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	analyzeTool := mcp.NewTool("analyze_videos",
		mcp.WithDescription("Open each YouTube video link in a real browser, one at a time, and return title, channel, subscriber count, views, likes, comments and publish date. Failed links are reported individually and do not stop the batch."),
		mcp.WithArray("urls",
			mcp.Required(),
			mcp.Description("Video links (youtube.com/watch?v=... or youtu.be/...) in the order to analyze"),
		),
		mcp.WithBoolean("append",
			mcp.Description("Keep previously analyzed results and add these after them (default: false, replaces them)"),
		),
		mcp.WithBoolean("filter",
			mcp.Description("Silently skip entries that are not video links (default: false)"),
		),
	)
	s.AddTool(analyzeTool, handleAnalyze(c))

	stopTool := mcp.NewTool("stop_analysis",
		mcp.WithDescription("Stop the running batch after the current video and close the browser. Results collected so far are kept."),
	)
	s.AddTool(stopTool, handleStop(c))

	resultsTool := mcp.NewTool("get_results",
		mcp.WithDescription("Return every result accumulated so far as JSON."),
	)
	s.AddTool(resultsTool, handleResults(c))

	exportTool := mcp.NewTool("export_csv",
		mcp.WithDescription("Return the accumulated results as a CSV table (link, title, channel, subscriber count, view count, like count, comment count, publish date)."),
	)
	s.AddTool(exportTool, handleExport(c))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func (c *client) do(ctx context.Context, method, path string, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	return resp, nil
}

// apiError turns a non-2xx response into a tool error message.
func apiError(resp *http.Response) string {
	var status models.StatusResponse
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &status); err == nil && status.Error != nil {
		return fmt.Sprintf("[%s] %s", status.Error.Code, status.Error.Message)
	}
	return fmt.Sprintf("API returned status %d", resp.StatusCode)
}

func handleAnalyze(c *client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		urls, err := request.RequireStringSlice("urls")
		if err != nil {
			return mcp.NewToolResultError("urls is required and must be an array of strings"), nil
		}

		resp, err := c.do(ctx, http.MethodPost, "/api/v1/analyze", models.AnalyzeRequest{
			URLs:   urls,
			Append: request.GetBool("append", false),
			Filter: request.GetBool("filter", false),
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return mcp.NewToolResultError(apiError(resp)), nil
		}

		records, done, err := readStream(resp.Body)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read result stream: %v", err)), nil
		}
		return mcp.NewToolResultText(summarize(records, done)), nil
	}
}

// readStream collects result records and the final done event from an
// analyze event stream.
func readStream(r io.Reader) ([]models.VideoRecord, *models.DoneEvent, error) {
	var (
		records []models.VideoRecord
		done    *models.DoneEvent
		event   string
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data := []byte(strings.TrimSpace(strings.TrimPrefix(line, "data:")))
			switch event {
			case "result":
				var ev models.ResultEvent
				if err := json.Unmarshal(data, &ev); err != nil {
					return records, done, fmt.Errorf("decode result: %w", err)
				}
				records = append(records, ev.Record)
			case "done":
				done = &models.DoneEvent{}
				if err := json.Unmarshal(data, done); err != nil {
					return records, nil, fmt.Errorf("decode done: %w", err)
				}
			}
		}
	}
	return records, done, sc.Err()
}

func summarize(records []models.VideoRecord, done *models.DoneEvent) string {
	var b strings.Builder
	if done != nil {
		fmt.Fprintf(&b, "Analyzed %d/%d videos (%d succeeded)", done.Processed, done.Total, done.Succeeded)
		if done.Stopped {
			b.WriteString(", stopped early")
		}
		b.WriteString("\n\n")
	}
	for i, r := range records {
		if r.Failed() {
			fmt.Fprintf(&b, "%d. %s\n   error: %s\n", i+1, r.URL, r.Error)
			continue
		}
		fmt.Fprintf(&b, "%d. %s\n   channel: %s (%s subscribers)\n   views: %s  likes: %s  comments: %s  published: %s\n   %s\n",
			i+1, r.Title, r.ChannelName, r.SubscriberCount,
			r.ViewCount, r.LikeCount, r.CommentCount, r.PublishDate, r.URL)
	}
	return b.String()
}

func handleStop(c *client) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		resp, err := c.do(ctx, http.MethodPost, "/api/v1/stop", nil)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return mcp.NewToolResultError(apiError(resp)), nil
		}
		return mcp.NewToolResultText("analysis stopped and browser closed"), nil
	}
}

func handleResults(c *client) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		resp, err := c.do(ctx, http.MethodGet, "/api/v1/results", nil)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return mcp.NewToolResultError(apiError(resp)), nil
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read response: %v", err)), nil
		}
		return mcp.NewToolResultText(string(body)), nil
	}
}

func handleExport(c *client) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		resp, err := c.do(ctx, http.MethodGet, "/api/v1/results/export.csv", nil)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return mcp.NewToolResultError(apiError(resp)), nil
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read response: %v", err)), nil
		}
		return mcp.NewToolResultText(strings.TrimPrefix(string(body), "\ufeff")), nil
	}
}
