package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/clara-ai/clara-go/bridge"
	"github.com/clara-ai/clara-go/config"
	"github.com/clara-ai/clara-go/domain/ports"
	"github.com/clara-ai/clara-go/engine"
	"github.com/clara-ai/clara-go/infrastructure/remote"
	"github.com/clara-ai/clara-go/infrastructure/wasmeval"
	"github.com/clara-ai/clara-go/session"
	"github.com/clara-ai/clara-go/toolbox"
	"github.com/clara-ai/clara-go/wireformat"
)

// replUser is the session owner for the interactive shell.
const replUser = "repl"

var (
	configPath    string
	evaluatorKind string
	endpoint      string
	modulePath    string
)

var rootCmd = &cobra.Command{
	Use:           "clara-repl",
	Short:         "Interactive shell for the clara-evaluate bridge",
	Long:          `clara-repl reads expressions from stdin, routes each one through the registered clara-evaluate function, and renders the result envelope.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: cfg.Logging.SlogLevel(),
		})))

		ctx := cmd.Context()
		evaluator, cleanup, err := buildEvaluator(ctx, cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		b, err := bridge.New(evaluator)
		if err != nil {
			return err
		}
		store, err := session.NewStore(func() (*engine.Environment, error) {
			env := engine.NewEnvironment()
			if err := b.Register(env); err != nil {
				return nil, err
			}
			return env, nil
		},
			session.WithMaxConcurrent(cfg.Sessions.MaxConcurrent),
			session.WithMaxPerUser(cfg.Sessions.MaxPerUser),
			session.WithTTL(cfg.Sessions.TTL()),
		)
		if err != nil {
			return err
		}
		sess, err := store.Create(replUser)
		if err != nil {
			return err
		}
		defer func() { _ = store.Remove(sess.ID) }()

		return runREPL(ctx, sess.Env, cfg.Evaluator.Kind)
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file (YAML)")
	rootCmd.Flags().StringVar(&evaluatorKind, "evaluator", "", "evaluator kind: native, wasm, remote")
	rootCmd.Flags().StringVar(&endpoint, "endpoint", "", "evaluation endpoint URL (remote evaluator)")
	rootCmd.Flags().StringVar(&modulePath, "module", "", "evaluator WASM module path (wasm evaluator)")
}

// Execute runs the root command and exits nonzero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

// loadConfig merges the config file (or defaults) with command-line flags.
func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	if evaluatorKind != "" {
		cfg.Evaluator.Kind = evaluatorKind
	}
	if endpoint != "" {
		cfg.Evaluator.Endpoint = endpoint
	}
	if modulePath != "" {
		cfg.Evaluator.ModulePath = modulePath
	}
	return cfg, cfg.Validate()
}

// buildEvaluator constructs the configured Evaluator and a cleanup function.
func buildEvaluator(ctx context.Context, cfg config.Config) (ports.Evaluator, func(), error) {
	noop := func() {}

	switch cfg.Evaluator.Kind {
	case config.EvaluatorNative:
		manager, err := toolbox.NewManager(
			toolbox.WithMiddleware(toolbox.PanicRecoveryMiddleware()),
			toolbox.WithTool(toolbox.NewEchoTool()),
			toolbox.WithTool(toolbox.NewEvalTool()),
		)
		if err != nil {
			return nil, noop, err
		}
		return toolbox.NewEvaluator(manager), noop, nil

	case config.EvaluatorWasm:
		wasmBytes, err := os.ReadFile(cfg.Evaluator.ModulePath)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to read evaluator module: %w", err)
		}
		evaluator, err := wasmeval.New(ctx, wasmBytes)
		if err != nil {
			return nil, noop, err
		}
		return evaluator, func() { _ = evaluator.Close(ctx) }, nil

	case config.EvaluatorRemote:
		opts := []remote.Option{}
		if cfg.Evaluator.TimeoutMs > 0 {
			opts = append(opts, remote.WithTimeout(cfg.Evaluator.Timeout()))
		}
		evaluator, err := remote.New(cfg.Evaluator.Endpoint, opts...)
		if err != nil {
			return nil, noop, err
		}
		return evaluator, noop, nil

	default:
		return nil, noop, fmt.Errorf("unknown evaluator kind: %q", cfg.Evaluator.Kind)
	}
}

// runREPL reads lines from stdin and routes each through the bridge UDF.
func runREPL(ctx context.Context, env *engine.Environment, kind string) error {
	pterm.DefaultHeader.Println("clara-repl")
	pterm.Info.Printfln("evaluator: %s (type a tool request or an expression, :quit to exit)", kind)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		pterm.FgGray.Print("clara> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == ":quit" || line == ":exit" {
			break
		}

		result, err := env.Call(ctx, bridge.Name, engine.String(toPayload(line)))
		if err != nil {
			pterm.Error.Println(err)
			continue
		}
		render(result.Lexeme())
	}
	return scanner.Err()
}

// toPayload passes raw JSON through and wraps anything else as an eval tool
// request, so plain expressions like (+ 1 2) work at the prompt.
func toPayload(line string) string {
	if strings.HasPrefix(line, "{") {
		return line
	}
	args, _ := json.Marshal(map[string]string{"expression": line})
	payload, _ := json.Marshal(wireformat.ToolRequestWire{Tool: "eval", Arguments: args})
	return string(payload)
}

// render pretty-prints a result envelope, falling back to raw output when
// the result is not a well-formed envelope.
func render(raw string) {
	var res wireformat.ResultWire
	if err := json.Unmarshal([]byte(raw), &res); err != nil || res.Status == "" {
		pterm.Println(raw)
		return
	}
	if res.IsOK() {
		pterm.Success.Println(res.Message)
	} else {
		pterm.Error.Println(res.Message)
	}
	if len(res.Data) > 0 {
		data, err := json.MarshalIndent(res.Data, "", "  ")
		if err == nil {
			pterm.FgGray.Println(string(data))
		}
	}
}
