// Command play runs a game of chess in the terminal, optionally against the
// random bot playing black.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/benbeisheim/chess-backend/internal/bot"
	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/textui"
)

func main() {
	useBot := flag.Bool("bot", false, "let the computer play black")
	seed := flag.Int64("seed", 0, "seed for the bot (0 picks one at random)")
	flag.Parse()

	var opponent model.MoveChooser
	if *useBot {
		if *seed != 0 {
			opponent = bot.NewRandomMoverWithSeed(*seed)
		} else {
			opponent = bot.NewRandomMover()
		}
	}
	if err := run(os.Stdin, os.Stdout, opponent); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run plays one game reading moves from in. opponent, when set, plays black.
func run(in io.Reader, out io.Writer, opponent model.MoveChooser) error {
	state := model.NewGameState()
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, "\n"+textui.Render(state.Board))
		fmt.Fprintf(out, "\n%s's turn\n", state.ToMove.Title())

		switch state.Status() {
		case model.StatusCheckmate:
			fmt.Fprintf(out, "Checkmate! %s loses.\n", state.ToMove.Title())
			return finish(out, state)
		case model.StatusStalemate:
			fmt.Fprintln(out, "Stalemate! The game is a draw.")
			return finish(out, state)
		case model.StatusCheck:
			fmt.Fprintf(out, "%s is in check!\n", state.ToMove.Title())
		}

		if opponent != nil && state.ToMove == model.PlayerColorBlack {
			move, ok := opponent.ChooseMove(state)
			if !ok {
				fmt.Fprintln(out, "Bot couldn't find a valid move. Game over.")
				return finish(out, state)
			}
			next, notation, err := state.Apply(move.From, move.To)
			if err != nil {
				return fmt.Errorf("bot played %s: %w", move, err)
			}
			state = next
			fmt.Fprintf(out, "Bot move: %s\n", notation)
			continue
		}

		fmt.Fprint(out, "Enter your move (e.g., 'e2 e4') or 'quit' to end: ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return err
			}
			fmt.Fprintln(out)
			return finish(out, state)
		}
		line := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(line, "quit") {
			return finish(out, state)
		}

		move, err := textui.ParseMove(line)
		if err != nil {
			fmt.Fprintln(out, "Invalid input. Please use the format 'e2 e4'.")
			continue
		}
		next, notation, err := state.Apply(move.From, move.To)
		if errors.Is(err, model.ErrIllegalMove) {
			fmt.Fprintln(out, "Invalid move. Try again.")
			continue
		}
		if err != nil {
			return err
		}
		state = next
		fmt.Fprintf(out, "Move made: %s\n", notation)
	}
}

func finish(out io.Writer, state model.GameState) error {
	fmt.Fprintln(out, "Game over.")
	fmt.Fprintln(out, "Move history:")
	fmt.Fprint(out, textui.History(state.MoveHistory))
	return nil
}
