package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"math/big"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"ppv-marketplace/internal/domain/entities"
	"ppv-marketplace/internal/infrastructure/cache"
	"ppv-marketplace/internal/infrastructure/chain"
	infra_repo "ppv-marketplace/internal/infrastructure/repositories"
	"ppv-marketplace/internal/pkg/config"
	"ppv-marketplace/internal/pkg/logger"
	"ppv-marketplace/internal/usecases"
	"ppv-marketplace/pkg/errors"
	"ppv-marketplace/pkg/file"
	"ppv-marketplace/pkg/helper"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const usage = `usage: client [flags] <command> [args]

commands:
  list                         list videos
  access   <id> [viewer]       check whether viewer (default: own wallet) may play a video
  purchase <id>                pay to view
  withdraw <id>                withdraw earnings (uploader only)
  toggle   <id>                flip the active flag (uploader only)
  update   <id> <title> <price> [description]
  register <video-cid> <thumb-cid> <title> <price>
  reset                        clear the local entitlement cache
`

type app struct {
	backend     entities.Backend
	chains      usecases.Chains
	entitlement usecases.EntitlementService
	txs         usecases.TransactionService
	catalog     usecases.CatalogService
	out         *os.File
}

func main() {
	backendFlag := flag.String("backend", "evm", "chain backend: evm or ton")
	cacheDir := flag.String("cache", defaultCacheDir(), "directory of the local entitlement cache")
	yes := flag.Bool("yes", false, "approve every transaction without asking")
	verbose := flag.Bool("v", false, "log chain traffic")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
	cfg := config.LoadConfig()
	backend, err := entities.ParseBackend(*backendFlag)
	if err != nil {
		log.Fatal(err)
	}
	// only dial the backend in use
	cfg.EVM.Enabled = backend == entities.BackendEVM
	cfg.TON.Enabled = backend == entities.BackendTON
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	zl, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	if !*verbose {
		zl = zl.WithOptions(zap.IncreaseLevel(zapcore.WarnLevel))
	}
	defer zl.Sync()

	// Ctrl+C aborts a pending approval or confirmation wait
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	approve := promptApprover(bufio.NewReader(os.Stdin), backend)
	if *yes {
		approve = func(context.Context, *entities.CallPayload) (bool, error) { return true, nil }
	}
	clients, err := chain.Connect(ctx, cfg, approve, zl)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer clients.Close()

	if err := os.MkdirAll(*cacheDir, 0o755); err != nil {
		log.Fatalf("cache dir: %v", err)
	}
	grantCache, err := cache.OpenLevelDB(filepath.Join(*cacheDir, string(backend)))
	if err != nil {
		log.Fatal(err)
	}
	defer grantCache.Close()

	chains := usecases.Chains(clients.Backends)
	entitlement := usecases.NewEntitlementService(chains, infra_repo.NewInMemoryEntitlementRepository(), grantCache, nil, zl)
	a := &app{
		backend:     backend,
		chains:      chains,
		entitlement: entitlement,
		txs:         usecases.NewTransactionService(chains, infra_repo.NewInMemoryTransactionRepository(), entitlement, nil, cfg.Tx, cfg.Poll, nil, zl),
		catalog:     usecases.NewCatalogService(chains, infra_repo.NewInMemoryVideoRepository(), zl),
		out:         os.Stdout,
	}

	if err := a.run(ctx, flag.Arg(0), flag.Args()[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", errors.CodeOf(err), err)
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "list":
		return a.list(ctx)
	case "access":
		return a.access(ctx, args)
	case "purchase":
		return a.simple(ctx, entities.KindPayToView, args)
	case "withdraw":
		return a.simple(ctx, entities.KindWithdraw, args)
	case "toggle":
		return a.simple(ctx, entities.KindToggleActive, args)
	case "update":
		return a.update(ctx, args)
	case "register":
		return a.register(ctx, args)
	case "reset":
		if err := a.entitlement.ResetCache(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "entitlement cache cleared")
		return nil
	}
	return errors.ErrInvalidInput(fmt.Errorf("unknown command %q", cmd))
}

func (a *app) list(ctx context.Context) error {
	videos, _, err := a.catalog.List(ctx, a.backend)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPRICE\tVIEWS\tACTIVE\tUPLOADER")
	for _, v := range videos {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%t\t%s\n",
			v.ID, v.DisplayTitle(), a.amount(v.Price), v.TotalViews, v.Active, file.ShortAddress(v.Uploader))
	}
	return tw.Flush()
}

func (a *app) access(ctx context.Context, args []string) error {
	id, err := videoArg(args)
	if err != nil {
		return err
	}
	viewer := a.sender()
	if len(args) > 1 {
		viewer = args[1]
	}
	ok, err := a.entitlement.CanView(ctx, a.backend, id, viewer)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintf(a.out, "%s cannot view video %d\n", displayViewer(viewer), id)
		return nil
	}
	fmt.Fprintf(a.out, "%s can view video %d\n", displayViewer(viewer), id)
	return nil
}

func (a *app) simple(ctx context.Context, kind entities.Kind, args []string) error {
	id, err := videoArg(args)
	if err != nil {
		return err
	}
	return a.execute(ctx, usecases.PrepareRequest{Kind: kind, Backend: a.backend, VideoID: id})
}

func (a *app) update(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return errors.ErrInvalidInput(fmt.Errorf("update needs <id> <title> <price>"))
	}
	id, err := videoArg(args)
	if err != nil {
		return err
	}
	price, err := helper.ParseAmount(args[2], a.backend.Decimals())
	if err != nil {
		return errors.ErrInvalidInput(err)
	}
	req := usecases.PrepareRequest{Kind: entities.KindUpdateMetadata, Backend: a.backend, VideoID: id, Title: args[1], Price: price}
	if len(args) > 3 {
		req.Description = strings.Join(args[3:], " ")
	}
	return a.execute(ctx, req)
}

func (a *app) register(ctx context.Context, args []string) error {
	if len(args) < 4 {
		return errors.ErrInvalidInput(fmt.Errorf("register needs <video-cid> <thumb-cid> <title> <price>"))
	}
	price, err := helper.ParseAmount(args[3], a.backend.Decimals())
	if err != nil {
		return errors.ErrInvalidInput(err)
	}
	return a.execute(ctx, usecases.PrepareRequest{
		Kind:          entities.KindRegisterVideo,
		Backend:       a.backend,
		Title:         args[2],
		Price:         price,
		ContentHash:   args[0],
		ThumbnailHash: args[1],
	})
}

func (a *app) execute(ctx context.Context, req usecases.PrepareRequest) error {
	start := time.Now()
	res, err := a.txs.Execute(ctx, req)
	if res != nil {
		fmt.Fprintf(a.out, "%s %s: %s (tx %s, %d polls, %s)\n",
			req.Kind, a.backend, res.Tx.Status, res.Tx.TxHash, res.Attempts, time.Since(start).Round(time.Second))
	}
	if errors.HasCode(err, errors.CodeTimedOut) {
		fmt.Fprintln(a.out, "the transaction may still land; check again later")
	}
	return err
}

func (a *app) sender() string {
	client, err := a.chains.Get(a.backend)
	if err != nil {
		return ""
	}
	return client.Sender()
}

func (a *app) amount(v *big.Int) string {
	unit := "ETH"
	if a.backend == entities.BackendTON {
		unit = "TON"
	}
	return helper.FormatAmount(v, a.backend.Decimals()) + " " + unit
}

// promptApprover asks on the terminal before anything is signed.
func promptApprover(in *bufio.Reader, backend entities.Backend) func(context.Context, *entities.CallPayload) (bool, error) {
	return func(ctx context.Context, p *entities.CallPayload) (bool, error) {
		fmt.Printf("\n%s on %s\n  to:          %s\n  value:       %s\n  valid until: %s\n",
			p.Kind, backend, p.Contract, helper.FormatAmount(p.Value, backend.Decimals()), p.ValidUntil.Format(time.TimeOnly))
		fmt.Print("send? [y/N] ")

		answer := make(chan string, 1)
		go func() {
			line, _ := in.ReadString('\n')
			answer <- strings.ToLower(strings.TrimSpace(line))
		}()
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case line := <-answer:
			return line == "y" || line == "yes", nil
		}
	}
}

func videoArg(args []string) (uint64, error) {
	if len(args) == 0 {
		return 0, errors.ErrInvalidInput(fmt.Errorf("missing video id"))
	}
	id, err := helper.ParseVideoID(args[0])
	if err != nil {
		return 0, errors.ErrInvalidInput(err)
	}
	return id, nil
}

func displayViewer(viewer string) string {
	if viewer == "" {
		return "anonymous viewer"
	}
	return file.ShortAddress(viewer)
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "ppv-marketplace")
	}
	return ".ppv-cache"
}
