package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"

	"missiongate/cmd/gate/ui"
	"missiongate/internal/mission"
)

// runInteractiveChat is the default mode: a REPL where one process lifetime
// is one session, so clarifications and approvals carry across turns.
func runInteractiveChat() error {
	a, err := buildApp(true)
	if err != nil {
		return err
	}
	defer a.close()
	a.watchConfig()

	styles := ui.DefaultStyles()
	sessionID := uuid.NewString()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
		fmt.Println()
		os.Exit(0)
	}()

	printBanner(styles)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(styles.Prompt.Render("you> ") + " ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		resp := a.coordinator.ProcessMessage(ctx, sessionID, line)
		printResponse(styles, resp)
	}

	return scanner.Err()
}

func printBanner(styles ui.Styles) {
	fmt.Println(styles.Title.Render("missiongate"))
	fmt.Println(styles.Subtitle.Render("describe a task; nothing runs until you approve it"))
	fmt.Println(styles.Muted.Render(`type "help" for capabilities, "exit" to quit`))
	fmt.Println(styles.RenderDivider(60))
}

func printResponse(styles ui.Styles, resp mission.Response) {
	switch resp.Kind {
	case mission.RespProposal:
		fmt.Println(styles.Proposal.Render(resp.Text))
	case mission.RespExecution:
		fmt.Println(styles.Success.Render(resp.Text))
	case mission.RespError:
		fmt.Println(styles.Error.Render(resp.Text))
	case mission.RespClarification:
		fmt.Println(styles.Warning.Render(resp.Text))
	default:
		fmt.Println(styles.Response.Render(resp.Text))
	}
	fmt.Println()
}
