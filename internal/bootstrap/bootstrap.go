package bootstrap

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	archiveinadapter "prax/internal/modules/archive/adapter/in"
	archiveoutadapter "prax/internal/modules/archive/adapter/out"
	archiveservice "prax/internal/modules/archive/service"
	archiveusecase "prax/internal/modules/archive/usecase"
	coachinadapter "prax/internal/modules/coach/adapter/in"
	coachoutadapter "prax/internal/modules/coach/adapter/out"
	coachservice "prax/internal/modules/coach/service"
	coachusecase "prax/internal/modules/coach/usecase"
	practiceinadapter "prax/internal/modules/practice/adapter/in"
	practiceoutadapter "prax/internal/modules/practice/adapter/out"
	practiceservice "prax/internal/modules/practice/service"
	practiceusecase "prax/internal/modules/practice/usecase"
	"prax/internal/platform/clock"
	"prax/internal/platform/config"
	"prax/internal/platform/id"
	"prax/internal/platform/tx"
	uiapp "prax/internal/ui/app"
)

type App struct {
	PracticeCLI practiceinadapter.CLIHandler
	ArchiveCLI  archiveinadapter.CLIHandler
	CoachCLI    coachinadapter.CLIHandler
}

func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	clk := clock.SystemClock{}
	ids := id.RandomHex{}

	db, err := practiceoutadapter.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	store, err := practiceoutadapter.NewSQLiteStore(db)
	if err != nil {
		return nil, fmt.Errorf("new practice store: %w", err)
	}
	notes := practiceoutadapter.NewMarkdownNoteStore(cfg.NotesPath)
	practiceSvc := practiceservice.NewPracticeService(clk, ids, store, notes, logger)
	practiceUC := practiceusecase.NewInteractor(practiceSvc)

	archiveStore := archiveoutadapter.NewSQLiteArchive(db)
	archiveSvc := archiveservice.NewArchiveService(
		clk,
		config.Version,
		archiveStore,
		archiveStore,
		archiveoutadapter.NewJSONFileStore(),
		tx.NewSQLManager(db),
		logger,
	)
	archiveUC := archiveusecase.NewInteractor(archiveSvc)

	coachSvc := coachservice.NewCoachService(
		coachoutadapter.NewFileManifestStore(cfg.CoachPath),
		coachoutadapter.NewGRPCHost(),
		coachoutadapter.NewPracticeContextSource(practiceUC),
		logger,
	)
	coachUC := coachusecase.NewInteractor(coachSvc)

	return &App{
		PracticeCLI: practiceinadapter.NewCLIHandler(practiceUC),
		ArchiveCLI:  archiveinadapter.NewCLIHandler(archiveUC),
		CoachCLI:    coachinadapter.NewCLIHandler(coachUC),
	}, nil
}

func RunTUI(app *App) error {
	model := uiapp.NewModel(app.PracticeCLI, app.CoachCLI, app.ArchiveCLI)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
