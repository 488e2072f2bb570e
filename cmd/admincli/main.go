package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// admincli is a terminal browser for the challenge schedule and the
// per-challenge leaderboards, talking to the backend's HTTP API.

type apiClient struct {
	baseUrl string
	token   string
	client  *http.Client
}

func newApiClient(baseUrl, token string) *apiClient {
	return &apiClient{
		baseUrl: baseUrl,
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *apiClient) getJson(path string, dest any) error {
	req, err := http.NewRequest(http.MethodGet, c.baseUrl+path, nil)
	if err != nil {
		return err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s for %s", resp.Status, path)
	}
	var envelope struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return err
	}
	return json.Unmarshal(envelope.Data, dest)
}

type challengeRow struct {
	UUID       string `json:"uuid"`
	Date       string `json:"date"`
	Title      string `json:"title"`
	Difficulty string `json:"difficulty"`
	Category   string `json:"category"`
}

type leaderboardRow struct {
	Rank                  int    `json:"rank"`
	UserUUID              string `json:"user_uuid"`
	ScoreTotal            int    `json:"score_total"`
	Rating                string `json:"rating"`
	CompletionTimeSeconds int    `json:"completion_time_seconds"`
}

func (c *apiClient) listChallenges() ([]challengeRow, error) {
	var rows []challengeRow
	err := c.getJson("/challenges", &rows)
	return rows, err
}

func (c *apiClient) leaderboard(challengeUUID string) ([]leaderboardRow, error) {
	var rows []leaderboardRow
	err := c.getJson("/challenges/"+challengeUUID+"/leaderboard", &rows)
	return rows, err
}

func main() {
	apiUrl := flag.String("api", "http://localhost:8080", "backend API base url")
	flag.Parse()

	client := newApiClient(*apiUrl, os.Getenv("ADMIN_JWT"))

	challenges, err := client.listChallenges()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to fetch challenges: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(initialModel(client, challenges))
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error running program: %v\n", err)
		os.Exit(1)
	}
}
