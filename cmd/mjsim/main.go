package main

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"mahjongcore/internal/mlog"
	"mahjongcore/internal/ruleconfig"
	"mahjongcore/mahjong"
)

var (
	resourceFile string
	seed         int64
	maxRounds    int
)

var rootCmd = &cobra.Command{
	Use:   "mjsim",
	Short: "mjsim drives a randomly-played riichi mahjong session",
	Long:  `mjsim runs the core engine end-to-end with a scripted driver: every optional query is declined and every discard is the first legal tile, useful as a smoke test and a reference for wiring a real driver.`,
	RunE:  runSim,
}

func init() {
	rootCmd.Flags().StringVar(&resourceFile, "resource", "", "rule config file (yaml/toml/json); empty uses classical defaults")
	rootCmd.Flags().Int64Var(&seed, "seed", 1, "deterministic RNG seed")
	rootCmd.Flags().IntVar(&maxRounds, "max-rounds", 64, "safety cap on rounds played")
}

func main() {
	mlog.Init("mjsim", log.InfoLevel)
	if err := rootCmd.Execute(); err != nil {
		mlog.Error("error happen: %v", err)
		os.Exit(1)
	}
}

func runSim(cmd *cobra.Command, args []string) error {
	rules := ruleconfig.Default()
	if resourceFile != "" {
		var err error
		rules, err = ruleconfig.Load(resourceFile)
		if err != nil {
			return err
		}
	}
	mlog.Info("rules: %+v", rules)

	rng := rand.New(rand.NewSource(seed))
	names := [4]string{"North Wind", "East Wind", "South Wind", "West Wind"}
	g := mahjong.NewGame(names, rules, rng)

	for i := 0; i < maxRounds && !g.Over(); i++ {
		round, err := g.StartNextRound()
		if err != nil {
			return err
		}
		sit := g.CurrentSituation()
		mlog.Info("round %s: wind=%s round=%d honba=%d dealer=%d", round.ID(), sit.Wind, sit.RoundNum, sit.Bonus, sit.DealerSeat)

		if err := driveRound(round); err != nil {
			return err
		}
		for _, ev := range round.PopEvents() {
			logEvent(ev)
		}

		if _, err := g.Advance(); err != nil {
			return err
		}
	}

	fmt.Printf("final points: %v\n", g.Points())
	return nil
}

// driveRound plays a single round to completion with the simplest legal
// driver: decline every optional query, discard whatever the mandatory
// query allows first.
func driveRound(r *mahjong.Round) error {
	for !r.Finished() {
		queries := r.PendingQueries()
		if len(queries) == 0 {
			if err := r.RunContinuation(); err != nil {
				return err
			}
			continue
		}

		var mandatory *mahjong.DiscardQuery
		for _, q := range queries {
			if dq, ok := q.(mahjong.DiscardQuery); ok {
				dq := dq
				mandatory = &dq
				break
			}
		}
		if mandatory == nil {
			if err := r.DeclineCalls(); err != nil {
				return err
			}
			continue
		}
		if len(mandatory.Allowed) == 0 {
			return fmt.Errorf("discard query with no legal tiles")
		}
		if err := r.DiscardTile(mandatory.Seat, mandatory.Allowed[0], false); err != nil {
			return err
		}
	}
	return nil
}

func logEvent(ev mahjong.Event) {
	switch e := ev.(type) {
	case mahjong.DiscardEvent:
		mlog.Debug("seat %d discards %s", e.Seat, e.Tile)
	case mahjong.WinEvent:
		mlog.Info("seat %d wins: %d han %d fu, %d points", e.Win.Seat, e.Win.Result.Han, e.Win.Result.Fu, e.Win.Result.Cost.Total)
	case mahjong.DrawEvent:
		mlog.Info("round ends in a draw: %s", e.DrawKind)
	}
}
