// Command smoke drives a running server through upload, set_sender and a
// round of billed questions, then checks the error paths.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
)

var questions = []string{
	"What is the main topic of the document?",
	"Provide a summary.",
	"What are the key points?",
	"Provide a table of contents.",
	"Conclude the document.",
}

type client struct {
	baseURL string
	token   string
	http    *http.Client
}

func prettyPrint(v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(b))
}

func (c *client) do(req *http.Request) (int, map[string]interface{}, error) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	var out map[string]interface{}
	if err := json.Unmarshal(body, &out); err != nil {
		return resp.StatusCode, nil, fmt.Errorf("non-JSON response: %s", body)
	}
	return resp.StatusCode, out, nil
}

func (c *client) postJSON(path string, body interface{}) (int, map[string]interface{}, error) {
	payload, _ := json.Marshal(body)
	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *client) upload(path string) (int, map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, nil, err
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return 0, nil, err
	}
	if _, err := part.Write(data); err != nil {
		return 0, nil, err
	}
	if err := w.Close(); err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/upload", &buf)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.do(req)
}

func step(title string, status int, body map[string]interface{}, err error, wantOK bool) bool {
	color.Yellow("\n%s", title)
	if err != nil {
		color.Red("Failed: %v", err)
		return false
	}
	ok := (status < 300) == wantOK
	if ok {
		color.Green("Status: %d", status)
	} else {
		color.Red("Unexpected status: %d", status)
	}
	prettyPrint(body)
	return ok
}

func main() {
	baseURL := flag.String("url", "http://localhost:3000/api", "API base URL")
	file := flag.String("file", "", "document to upload (pdf, txt or md)")
	email := flag.String("email", "test@example.com", "sender email")
	flag.Parse()

	if *file == "" {
		color.Red("-file is required")
		os.Exit(2)
	}

	c := &client{baseURL: *baseURL, http: &http.Client{Timeout: 2 * time.Minute}}
	failures := 0
	check := func(ok bool) {
		if !ok {
			failures++
		}
	}

	color.Cyan("Starting DocQA API smoke test against %s", *baseURL)

	status, body, err := c.upload(*file)
	check(step("[1] Upload document", status, body, err, true))

	status, body, err = c.postJSON("/set_sender", map[string]string{"sender_email": *email, "sender_name": "Test User"})
	check(step("[2] Register sender", status, body, err, true))
	if token, _ := body["token"].(string); token != "" {
		c.token = token
	}

	for i, q := range questions {
		status, body, err = c.postJSON("/query", map[string]string{"question": q})
		check(step(fmt.Sprintf("[3.%d] Query: %s", i+1, q), status, body, err, true))
		if (i+1)%5 == 0 {
			if _, ok := body["payment"]; ok {
				color.Green("Payment was created")
			} else {
				color.Red("Expected a payment on question %d", i+1)
				failures++
			}
		}
	}

	color.Cyan("\nTesting error handling...")

	anon := &client{baseURL: *baseURL, http: c.http}
	status, body, err = anon.upload(filepath.Join(os.TempDir(), "nonexistent.pdf"))
	if err != nil {
		color.Green("Missing local file rejected: %v", err)
	} else {
		check(step("[4] Upload missing file", status, body, nil, false))
	}

	status, body, err = anon.postJSON("/set_sender", map[string]string{"sender_email": "", "sender_name": "x"})
	check(step("[5] Set sender without email", status, body, err, false))

	status, body, err = anon.postJSON("/query", map[string]string{"question": "Test question"})
	check(step("[6] Query without sender", status, body, err, false))

	if failures > 0 {
		color.Red("\n%d check(s) failed", failures)
		os.Exit(1)
	}
	color.Green("\nAll checks passed")
}
