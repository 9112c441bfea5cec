package main

import (
	"context"
	"os"
	"sort"

	"github.com/caarlos0/env/v11"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"conquest/engine"
	"conquest/game"
	"conquest/history"
	qdrantindex "conquest/history/qdrant"
	"conquest/history/voyage"
	"conquest/scenario"
	"conquest/store"
)

type config struct {
	RedisAddr        string `env:"REDIS_ADDR"`
	QdrantURL        string `env:"QDRANT_URL"`
	QdrantAPIKey     string `env:"QDRANT_API_KEY"`
	QdrantCollection string `env:"QDRANT_COLLECTION" envDefault:"historical_snippets"`
	VoyageAPIKey     string `env:"VOYAGE_API_KEY"`
	VoyageModel      string `env:"VOYAGE_MODEL"`
	Scenario         string `env:"SCENARIO" envDefault:"duel"`
	Seed             uint64 `env:"SEED" envDefault:"1"`
	MaxTurns         int    `env:"MAX_TURNS" envDefault:"500"`
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatal().Err(err).Msg("parse config")
	}

	ctx := context.Background()

	var st store.Store = store.NewMemory()
	if cfg.RedisAddr != "" {
		st = store.NewRedis(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}), 0)
	}
	defer st.Close()

	opts := []engine.Option{
		engine.WithDice(game.NewDice(cfg.Seed)),
		engine.WithLogger(log.Logger),
	}
	if cfg.QdrantURL != "" && cfg.VoyageAPIKey != "" {
		embedder, err := voyage.New(cfg.VoyageAPIKey, cfg.VoyageModel)
		if err != nil {
			log.Fatal().Err(err).Msg("voyage embedder")
		}
		index, err := qdrantindex.New(qdrantindex.Config{
			URL:        cfg.QdrantURL,
			APIKey:     cfg.QdrantAPIKey,
			Collection: cfg.QdrantCollection,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("qdrant index")
		}
		defer index.Close()
		opts = append(opts, engine.WithGate(history.NewGate(embedder, index)))
	}

	eng := engine.New(st, opts...)

	tmpl, err := scenario.Builtin(cfg.Scenario)
	if err != nil {
		log.Fatal().Err(err).Str("scenario", cfg.Scenario).Msg("load scenario")
	}

	winner, turns := runDemoGame(ctx, eng, tmpl, cfg.MaxTurns)
	if winner != "" {
		log.Info().Str("winner", winner).Int("turns", turns).Msg("demo game over")
	} else {
		log.Info().Int("turns", turns).Msg("demo game stopped without a winner")
	}
}

// runDemoGame plays the first two nations of a scenario against each other
// with a simple greedy policy, exercising the whole operation surface.
func runDemoGame(ctx context.Context, eng *engine.Engine, tmpl *scenario.Template, maxTurns int) (string, int) {
	g, err := eng.CreateGame(ctx, tmpl.ID)
	if err != nil {
		log.Fatal().Err(err).Msg("create game")
	}

	nations := map[string]string{}
	for _, n := range tmpl.Nations[:2] {
		p, err := eng.AddParticipant(ctx, g.ID, n.Name, false, "demo")
		if err != nil {
			log.Fatal().Err(err).Str("nation", n.Name).Msg("seat participant")
		}
		nations[p.ID] = n.Name
	}

	g, err = eng.Start(ctx, g.ID)
	if err != nil {
		log.Fatal().Err(err).Msg("start game")
	}

	for g.Status == game.StatusActive && g.Phase == game.PhaseSetup {
		g = playSetup(ctx, eng, g)
	}

	for g.Status == game.StatusActive && g.Turn <= maxTurns {
		g = playTurn(ctx, eng, g)
	}

	return nations[g.Winner], g.Turn
}

func playSetup(ctx context.Context, eng *engine.Engine, g *game.Game) *game.Game {
	pid := g.CurrentParticipant
	for _, p := range g.Participants {
		if p.ID != pid || p.SetupTroopsRemaining == 0 {
			continue
		}
		target := frontier(g, pid)
		next, err := eng.PlaceSetupTroops(ctx, g.ID, pid, target, p.SetupTroopsRemaining)
		if err != nil {
			log.Fatal().Err(err).Msg("setup placement")
		}
		g = next
	}
	next, err := eng.FinishSetup(ctx, g.ID, pid)
	if err != nil {
		log.Fatal().Err(err).Msg("finish setup")
	}
	return next
}

func playTurn(ctx context.Context, eng *engine.Engine, g *game.Game) *game.Game {
	pid := g.CurrentParticipant

	if g.ReinforcementsRemaining > 0 {
		next, err := eng.Reinforce(ctx, g.ID, pid, frontier(g, pid), g.ReinforcementsRemaining)
		if err != nil {
			log.Fatal().Err(err).Msg("reinforce")
		}
		g = next
	}
	g = advance(ctx, eng, g, pid) // -> attack

	for {
		from, to, diceCount, ok := bestAttack(g, pid)
		if !ok {
			break
		}
		next, result, err := eng.Attack(ctx, g.ID, pid, from, to, diceCount)
		if err != nil {
			log.Fatal().Err(err).Msg("attack")
		}
		g = next
		if result.Conquered {
			g, err = eng.ConfirmConquest(ctx, g.ID, pid, g.PendingConquest.MaxTroops)
			if err != nil {
				log.Fatal().Err(err).Msg("confirm conquest")
			}
			if g.Status == game.StatusFinished {
				return g
			}
		}
	}
	g = advance(ctx, eng, g, pid) // -> fortify
	return advance(ctx, eng, g, pid) // -> next turn
}

func advance(ctx context.Context, eng *engine.Engine, g *game.Game, pid string) *game.Game {
	next, err := eng.AdvancePhase(ctx, g.ID, pid)
	if err != nil {
		log.Fatal().Err(err).Str("phase", string(g.Phase)).Msg("advance phase")
	}
	return next
}

// frontier picks the owned territory that borders an enemy, preferring the
// strongest garrison; falls back to any owned territory.
func frontier(g *game.Game, pid string) string {
	names := make([]string, 0, len(g.Territories))
	for name := range g.Territories {
		names = append(names, name)
	}
	sort.Strings(names)

	best, bestTroops := "", -1
	fallback := ""
	for _, name := range names {
		t := g.Territories[name]
		if t.Owner != pid {
			continue
		}
		if fallback == "" {
			fallback = name
		}
		for _, adj := range t.Adjacent {
			if g.Territories[adj].Owner != pid {
				if t.Troops > bestTroops {
					best, bestTroops = name, t.Troops
				}
				break
			}
		}
	}
	if best != "" {
		return best
	}
	return fallback
}

// bestAttack finds a three-dice-capable attack against the weakest adjacent
// enemy, or reports none.
func bestAttack(g *game.Game, pid string) (from, to string, diceCount int, ok bool) {
	names := make([]string, 0, len(g.Territories))
	for name := range g.Territories {
		names = append(names, name)
	}
	sort.Strings(names)

	weakest := 1 << 30
	for _, name := range names {
		t := g.Territories[name]
		if t.Owner != pid || t.Troops < 4 {
			continue
		}
		for _, adj := range t.Adjacent {
			enemy := g.Territories[adj]
			if enemy.Owner == pid {
				continue
			}
			if enemy.Troops < weakest {
				from, to, weakest, ok = name, adj, enemy.Troops, true
			}
		}
	}
	return from, to, 3, ok
}
