// Command play is a terminal client for the daily puzzles. Guesses are
// read from stdin, one word per line.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"multidle/internal/game"
	"multidle/internal/key"
	"multidle/internal/session"
	"multidle/internal/store"
	"multidle/internal/streak"
	"multidle/internal/words"
)

// namespace is the single local player's key prefix.
const namespace = "local"

type options struct {
	mode      string
	dataDir   string
	wordsFile string
	salt      string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".multidle"
	}
	return filepath.Join(home, ".multidle")
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:   "play",
		Short: "Play today's multi-board puzzles in the terminal",
		Long: `play reads one guess per line from stdin and types it into every
board at once. Progress and streaks are kept in the data directory.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd.Context(), opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.dataDir, "data", defaultDataDir(), "directory for saved progress")
	rootCmd.Flags().StringVar(&opts.mode, "mode", string(game.ModeFour), "board count: two, three or four")
	rootCmd.Flags().StringVar(&opts.wordsFile, "words", "", "word list JSON (defaults to the built-in list)")
	rootCmd.Flags().StringVar(&opts.salt, "salt", "", "pick daily words by keyed hash instead of the schedule")

	rootCmd.AddCommand(statsCmd(opts))
	return rootCmd
}

func statsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the streak and per-mode records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := store.NewFile(opts.dataDir)
			if err != nil {
				return err
			}
			st := streak.Empty()
			err = store.GetJSON(cmd.Context(), fs, store.Key(namespace, store.KeyStreak), &st)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return err
			}
			if st.Validate() != nil {
				st = streak.Empty()
			}
			printStats(cmd.OutOrStdout(), st)
			return nil
		},
	}
}

func openService(ctx context.Context, opts *options) (*session.Service, error) {
	fs, err := store.NewFile(opts.dataDir)
	if err != nil {
		return nil, err
	}
	list, err := words.Load(opts.wordsFile)
	if err != nil {
		return nil, err
	}
	var src words.Source
	if opts.salt != "" {
		src, err = words.NewHashed(list, opts.salt)
	} else {
		src, err = words.LoadSchedule("", list)
	}
	if err != nil {
		return nil, err
	}
	return session.New(ctx, session.Options{
		Namespace: namespace,
		Store:     fs,
		Words:     src,
		Dict:      words.NewSet(list),
	})
}

func runPlay(ctx context.Context, opts *options, in io.Reader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	mode, err := game.ParseMode(opts.mode)
	if err != nil {
		return err
	}
	svc, err := openService(ctx, opts)
	if err != nil {
		return err
	}
	defer svc.Close()

	unsubscribe := svc.Subscribe(func(ev session.Event) {
		switch ev.Kind {
		case session.EventBoardSolved:
			fmt.Fprintf(out, "Board %d solved!\n", ev.BoardIndex+1)
		case session.EventInvalidEntry:
			fmt.Fprintln(out, "Not in word list.")
		case session.EventDayRollover:
			fmt.Fprintln(out, "A new day has started.")
		case session.EventAllDone:
			fmt.Fprintf(out, "\n%s\n%s\n\n%s\n", ev.Result.Message, ev.Result.Display, ev.Result.ShareScore)
		}
	})
	defer unsubscribe()

	if err := svc.SetMode(ctx, mode); err != nil {
		return err
	}
	_, cur, err := svc.Current(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s #%d\n", mode.Title(), cur.PuzzleNumber)
	renderState(out, cur)
	if cur.IsDone {
		return nil
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		guess := strings.TrimSpace(scanner.Text())
		if guess == "" {
			continue
		}
		for _, r := range guess {
			if k, ok := key.FromKeyCode(string(r)); ok {
				if _, cur, err = svc.Press(ctx, k); err != nil {
					return err
				}
			}
		}
		if _, cur, err = svc.Press(ctx, key.EnterKey); err != nil {
			return err
		}
		renderState(out, cur)
		if game.HasInvalidEntries(cur) {
			if _, cur, err = svc.ClearInvalid(ctx); err != nil {
				return err
			}
		}
		if cur.IsDone {
			break
		}
	}
	return scanner.Err()
}
