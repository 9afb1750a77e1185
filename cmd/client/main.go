package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
)

const (
	apiStatus   = "/api/status"
	apiGenerate = "/api/accounts/generate"
	apiAccounts = "/api/accounts"
	apiRegister = "/api/register"
)

var (
	version   string
	buildDate string
)

// postJSON sends body to the given endpoint and prints the response.
func postJSON(client *http.Client, baseURL, path string, body any) {
	payload, err := json.Marshal(body)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	resp, err := client.Post(baseURL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer resp.Body.Close()
	printResponse(resp)
}

func printResponse(resp *http.Response) {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("server answered %s: %s\n", resp.Status, strings.TrimSpace(string(data)))
		return
	}
	fmt.Println(strings.TrimSpace(string(data)))
}

// repl runs the interactive shell loop, accepting commands to generate
// and inspect accounts.
func repl(client *http.Client, baseURL string, userID int64) {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("accountbot> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "help":
			fmt.Println("Available commands: help, generate, list, status, register <invitation>, exit")
		case "generate":
			postJSON(client, baseURL, apiGenerate, map[string]any{"userId": userID})
		case "list":
			resp, err := client.Get(baseURL + apiAccounts + "?userId=" + strconv.FormatInt(userID, 10))
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			printResponse(resp)
			resp.Body.Close()
		case "status":
			resp, err := client.Get(baseURL + apiStatus)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			printResponse(resp)
			resp.Body.Close()
		case "register":
			if len(args) < 2 {
				fmt.Println("Usage: register <invitation link>")
				continue
			}
			postJSON(client, baseURL, apiRegister, map[string]any{
				"userId":     userID,
				"invitation": args[1],
			})
		case "exit":
			fmt.Println("Bye")
			return
		default:
			fmt.Println("Unknown command. Type 'help' for a list of commands.")
		}
	}
}

// main parses command-line flags and starts the shell.
func main() {
	var (
		baseURL string
		userID  int64
		showVer bool
	)

	flag.StringVar(&baseURL, "url", "http://localhost:8080", "server base URL")
	flag.Int64Var(&userID, "user", 1, "chat user id to act as")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("AccountBot Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	repl(&http.Client{}, baseURL, userID)
}
