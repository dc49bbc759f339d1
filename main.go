package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tanpawarit/banking-support-agent/agent/agents/banking"
	contractx "github.com/tanpawarit/banking-support-agent/agent/contract"
	flagsx "github.com/tanpawarit/banking-support-agent/agent/flags"
	ledgerx "github.com/tanpawarit/banking-support-agent/agent/ledger"
	promptx "github.com/tanpawarit/banking-support-agent/agent/prompt"
	statex "github.com/tanpawarit/banking-support-agent/agent/state"
	toolx "github.com/tanpawarit/banking-support-agent/agent/tool"
	configx "github.com/tanpawarit/banking-support-agent/pkg/config"
	flagsmithx "github.com/tanpawarit/banking-support-agent/pkg/flagsmith"
	logx "github.com/tanpawarit/banking-support-agent/pkg/logger"
	metricsx "github.com/tanpawarit/banking-support-agent/pkg/metrics"
	openrouterx "github.com/tanpawarit/banking-support-agent/pkg/openrouter"
	"github.com/tanpawarit/banking-support-agent/server"
)

type AgentConfig struct {
	MaxToolRounds int `envconfig:"MAX_TOOL_ROUNDS" split_words:"true" default:"8"`
}

func main() {
	logCfg := configx.MustNew[logx.Config]("LOG")
	logx.Init(*logCfg)

	ctx := context.Background()

	openRouterCfg := configx.MustNew[openrouterx.Config]("OPENROUTER")
	chatModel, err := openRouterCfg.New(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize chat model")
	}
	if client := openrouterx.NewClient(*openRouterCfg); client != nil {
		if err := openrouterx.Healthcheck(ctx, client); err != nil {
			log.Warn().Err(err).Msg("openrouter healthcheck failed")
		}
	}

	flagsmithCfg := configx.MustNew[flagsmithx.Config]("FLAGSMITH")
	flagClient := flagsmithx.MustNew(*flagsmithCfg)
	oracle := flagsx.NewOracle(flagClient)

	ledger := ledgerx.NewStore(ledgerx.SeedCustomers())
	sessions := statex.NewMemoryStore()
	collector := metricsx.NewCollector("banking_agent")

	executor := instrumentExecutor(toolx.NewExecutor(ledger, oracle), collector)

	agentCfg := configx.MustNew[AgentConfig]("AGENT")
	agent, err := banking.New(sessions, chatModel, executor, banking.Config{
		SystemPrompt:  promptx.LoadPromptSet().Banking,
		MaxToolRounds: agentCfg.MaxToolRounds,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("initialize banking agent")
	}

	serverCfg := configx.MustNew[server.Config]("SERVER")
	srv, err := server.New(*serverCfg, agent, sessions, collector)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize http server")
	}

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}

// instrumentExecutor wraps tool execution with invocation counters.
func instrumentExecutor(next toolx.Executor, collector *metricsx.Collector) toolx.Executor {
	return func(ctx context.Context, tool string, args map[string]any) (contractx.ToolResult, error) {
		result, err := next(ctx, tool, args)
		switch {
		case err != nil:
			collector.RecordTool(tool, "failure")
		case result.Error != "":
			collector.RecordTool(tool, "rejected")
		default:
			collector.RecordTool(tool, "ok")
		}
		return result, err
	}
}
