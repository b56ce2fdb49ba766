package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"prax/internal/bootstrap"
	coachdto "prax/internal/modules/coach/dto"
	practicedto "prax/internal/modules/practice/dto"
	"prax/internal/platform/config"
	"prax/internal/platform/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dataPath string
	var verbose bool

	root := &cobra.Command{
		Use:           "prax",
		Short:         "Deliberate practice journal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&dataPath, "data", ".", "data directory path")
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "verbose logging")

	load := func() (*bootstrap.App, error) {
		cfg, err := config.New(dataPath)
		if err != nil {
			return nil, err
		}
		logger, err := logging.New(verbose)
		if err != nil {
			return nil, err
		}
		return bootstrap.New(cfg, logger)
	}

	root.AddCommand(newTUICmd(load))
	root.AddCommand(newAreaCmd(load))
	root.AddCommand(newSessionCmd(load))
	root.AddCommand(newReflectCmd(load))
	root.AddCommand(newCoachCmd(load))
	root.AddCommand(newExportCmd(load))
	root.AddCommand(newImportCmd(load))
	return root
}

type loader func() (*bootstrap.App, error)

func newTUICmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run prax terminal UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			app, err := load()
			if err != nil {
				return err
			}
			return bootstrap.RunTUI(app)
		},
	}
}

func newAreaCmd(load loader) *cobra.Command {
	area := &cobra.Command{Use: "area", Short: "Manage practice areas"}

	var areaType string
	addCmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a practice area",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := load()
			if err != nil {
				return err
			}
			out, err := app.PracticeCLI.CreateArea(context.Background(), args[0], areaType)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "area created: %s (%s) type=%s\n", out.Name, out.ID, out.TypeLabel)
			return nil
		},
	}
	addCmd.Flags().StringVar(&areaType, "type", "solo_skill", "area type: solo_skill|performance|interpersonal|creative")
	area.AddCommand(addCmd)

	area.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List practice areas",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := load()
			if err != nil {
				return err
			}
			areas, err := app.PracticeCLI.ListAreas(context.Background())
			if err != nil {
				return err
			}
			if len(areas) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no practice areas")
				return nil
			}
			for _, a := range areas {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", a.ID, a.TypeLabel, a.Name)
			}
			return nil
		},
	})

	area.AddCommand(&cobra.Command{
		Use:   "delete <area-id>",
		Short: "Delete an empty practice area",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := load()
			if err != nil {
				return err
			}
			if err := app.PracticeCLI.DeleteArea(context.Background(), args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "area deleted: %s\n", args[0])
			return nil
		},
	})

	return area
}

func newSessionCmd(load loader) *cobra.Command {
	session := &cobra.Command{Use: "session", Short: "Practice session lifecycle"}

	var areaID, intent string
	var targetMinutes int
	start := &cobra.Command{
		Use:   "start --area-id <id> --intent <text>",
		Short: "Start a practice session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(areaID) == "" || strings.TrimSpace(intent) == "" {
				return fmt.Errorf("--area-id and --intent are required")
			}
			app, err := load()
			if err != nil {
				return err
			}
			out, err := app.PracticeCLI.StartSession(context.Background(), areaID, intent, targetMinutes*60)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session started: %s at=%s\n", out.ID, out.StartedAt.Format(time.RFC3339))
			if out.PreviousID != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "previous session: %s\n", out.PreviousID)
			}
			return nil
		},
	}
	start.Flags().StringVar(&areaID, "area-id", "", "practice area id")
	start.Flags().StringVar(&intent, "intent", "", "what this session works on")
	start.Flags().IntVar(&targetMinutes, "target", 0, "target duration in minutes (0 = untimed)")
	session.AddCommand(start)

	session.AddCommand(&cobra.Command{
		Use:   "stop <session-id>",
		Short: "End a running session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := load()
			if err != nil {
				return err
			}
			out, err := app.PracticeCLI.StopSession(context.Background(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session ended: %s duration=%s\n", out.ID, (time.Duration(out.ActualSeconds) * time.Second).String())
			return nil
		},
	})

	var listAreaID string
	list := &cobra.Command{
		Use:   "list --area-id <id>",
		Short: "List sessions in an area with reflection state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(listAreaID) == "" {
				return fmt.Errorf("--area-id is required")
			}
			app, err := load()
			if err != nil {
				return err
			}
			sessions, err := app.PracticeCLI.ListSessions(context.Background(), listAreaID)
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no sessions")
				return nil
			}
			for _, s := range sessions {
				state := s.State.Status
				if !s.Ended {
					state = "active"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", s.ID, state, s.StartedAt.Format("2006-01-02 15:04"), s.Intent)
			}
			return nil
		},
	}
	list.Flags().StringVar(&listAreaID, "area-id", "", "practice area id")
	session.AddCommand(list)

	var moveToAreaID string
	move := &cobra.Command{
		Use:   "move <session-id> --to <area-id>",
		Short: "Move a session to another area",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(moveToAreaID) == "" {
				return fmt.Errorf("--to is required")
			}
			app, err := load()
			if err != nil {
				return err
			}
			out, err := app.PracticeCLI.MoveSession(context.Background(), args[0], moveToAreaID)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session moved: %s area=%s\n", out.ID, out.AreaID)
			return nil
		},
	}
	move.Flags().StringVar(&moveToAreaID, "to", "", "destination area id")
	session.AddCommand(move)

	session.AddCommand(&cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete an unreflected session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := load()
			if err != nil {
				return err
			}
			if err := app.PracticeCLI.DeleteSession(context.Background(), args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "session deleted: %s\n", args[0])
			return nil
		},
	})

	session.AddCommand(&cobra.Command{
		Use:   "context <session-id>",
		Short: "Show the previous-session context for a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := load()
			if err != nil {
				return err
			}
			out, err := app.PracticeCLI.PreviousContext(context.Background(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "status: %s\n", out.Status)
			if out.Intent != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "intent: %s\n", out.Intent)
			}
			if out.NextAction != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "next action: %s\n", out.NextAction)
			}
			if out.AreaID != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "now in area: %s\n", out.AreaID)
			}
			return nil
		},
	})

	return session
}

func newReflectCmd(load loader) *cobra.Command {
	reflect := &cobra.Command{Use: "reflect", Short: "Session reflections"}

	var sessionID, whatHappened, lesson, nextAction, feedbackNote string
	var tone, aiRequests, aiAccepts, feedbackRating int
	var aiAssisted bool
	newCmd := &cobra.Command{
		Use:   "new --session-id <id>",
		Short: "Write a reflection for an ended session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(sessionID) == "" {
				return fmt.Errorf("--session-id is required")
			}
			app, err := load()
			if err != nil {
				return err
			}
			input := practicedto.ReflectInput{
				SessionID:      sessionID,
				Tone:           tone,
				AIAssisted:     aiAssisted,
				WhatHappened:   whatHappened,
				Lesson:         lesson,
				NextAction:     nextAction,
				AIRequestCount: aiRequests,
				AIAcceptCount:  aiAccepts,
				FeedbackNote:   feedbackNote,
			}
			if feedbackRating >= 0 {
				input.FeedbackRating = &feedbackRating
			}
			out, err := app.PracticeCLI.CreateReflection(context.Background(), input)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "reflection saved: %s tone=%s\n", out.ID, out.ToneLabel)
			return nil
		},
	}
	newCmd.Flags().StringVar(&sessionID, "session-id", "", "session id")
	newCmd.Flags().IntVar(&tone, "tone", 1, "coaching tone: 1 facilitative, 2 socratic, 3 supportive")
	newCmd.Flags().BoolVar(&aiAssisted, "ai", false, "reflection was written with AI prompts")
	newCmd.Flags().StringVar(&whatHappened, "what-happened", "", "step 2: what happened")
	newCmd.Flags().StringVar(&lesson, "lesson", "", "step 3: lesson learned")
	newCmd.Flags().StringVar(&nextAction, "next-action", "", "step 4: next concrete action")
	newCmd.Flags().IntVar(&aiRequests, "ai-requests", 0, "AI prompt requests made")
	newCmd.Flags().IntVar(&aiAccepts, "ai-accepts", 0, "AI prompts accepted")
	newCmd.Flags().IntVar(&feedbackRating, "rating", -1, "prompt helpfulness 0-4 (-1 = unrated)")
	newCmd.Flags().StringVar(&feedbackNote, "note", "", "free-form feedback note")
	reflect.AddCommand(newCmd)

	var editSessionID, editWhatHappened, editLesson, editNextAction, editNote string
	var editTone, editRating int
	editCmd := &cobra.Command{
		Use:   "edit --session-id <id>",
		Short: "Edit a reflection inside its 48h window",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(editSessionID) == "" {
				return fmt.Errorf("--session-id is required")
			}
			app, err := load()
			if err != nil {
				return err
			}
			input := practicedto.EditReflectionInput{
				SessionID:    editSessionID,
				Tone:         editTone,
				WhatHappened: editWhatHappened,
				Lesson:       editLesson,
				NextAction:   editNextAction,
				FeedbackNote: editNote,
			}
			if editRating >= 0 {
				input.FeedbackRating = &editRating
			}
			out, err := app.PracticeCLI.EditReflection(context.Background(), input)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "reflection updated: %s edited=%t\n", out.ID, out.Edited)
			return nil
		},
	}
	editCmd.Flags().StringVar(&editSessionID, "session-id", "", "session id")
	editCmd.Flags().IntVar(&editTone, "tone", 0, "coaching tone (0 = unchanged)")
	editCmd.Flags().StringVar(&editWhatHappened, "what-happened", "", "step 2: what happened")
	editCmd.Flags().StringVar(&editLesson, "lesson", "", "step 3: lesson learned")
	editCmd.Flags().StringVar(&editNextAction, "next-action", "", "step 4: next concrete action")
	editCmd.Flags().IntVar(&editRating, "rating", -1, "prompt helpfulness 0-4 (-1 = unchanged)")
	editCmd.Flags().StringVar(&editNote, "note", "", "free-form feedback note")
	reflect.AddCommand(editCmd)

	reflect.AddCommand(&cobra.Command{
		Use:   "show <session-id>",
		Short: "Show a session's reflection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := load()
			if err != nil {
				return err
			}
			out, err := app.PracticeCLI.GetReflection(context.Background(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "id: %s\ntone: %s\nai assisted: %t\n", out.ID, out.ToneLabel, out.AIAssisted)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "what happened: %s\nlesson: %s\nnext action: %s\n", out.WhatHappened, out.Lesson, out.NextAction)
			if out.FeedbackRating != nil {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "feedback: %s\n", out.FeedbackLabel)
			}
			if out.FeedbackNote != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "note: %s\n", out.FeedbackNote)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "completed: %s", out.CompletedAt.Format(time.RFC3339))
			if out.Edited {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), " (edited %s)", out.UpdatedAt.Format(time.RFC3339))
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	})

	return reflect
}

func newCoachCmd(load loader) *cobra.Command {
	coach := &cobra.Command{Use: "coach", Short: "AI coaching prompts"}

	var sessionID string
	var tone, step int
	prompt := &cobra.Command{
		Use:   "prompt --session-id <id> --step <2-4>",
		Short: "Generate a coaching prompt for a reflection step",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(sessionID) == "" {
				return fmt.Errorf("--session-id is required")
			}
			app, err := load()
			if err != nil {
				return err
			}
			out, err := app.CoachCLI.GeneratePrompt(context.Background(), coachdto.PromptInput{
				SessionID: sessionID,
				Tone:      tone,
				Step:      step,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", out.Source, out.Text)
			return nil
		},
	}
	prompt.Flags().StringVar(&sessionID, "session-id", "", "session id")
	prompt.Flags().IntVar(&tone, "tone", 1, "coaching tone: 1 facilitative, 2 socratic, 3 supportive")
	prompt.Flags().IntVar(&step, "step", 2, "reflection step: 2 what happened, 3 lesson, 4 next action")
	coach.AddCommand(prompt)

	coach.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show configured coach plugin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := load()
			if err != nil {
				return err
			}
			info, configured, err := app.CoachCLI.Status(context.Background())
			if err != nil {
				return err
			}
			if !configured {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no coach configured; prompts use built-in text")
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s@%s enabled=%t binary=%s\n", info.Name, info.Version, info.Enabled, info.Binary)
			return nil
		},
	})

	coach.AddCommand(&cobra.Command{
		Use:   "doctor",
		Short: "Validate coach plugin checksum and lifecycle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := load()
			if err != nil {
				return err
			}
			results, err := app.CoachCLI.Doctor(context.Background())
			if err != nil {
				return err
			}
			if len(results) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no coach configured")
				return nil
			}
			for _, r := range results {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s binary=%t checksum=%t lifecycle=%t", r.Name, r.BinaryReachable, r.ChecksumValid, r.LifecycleOK)
				if r.Error != "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), " error=%q", r.Error)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	})

	return coach
}

func newExportCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "export <path>",
		Short: "Export the full journal to a JSON snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := load()
			if err != nil {
				return err
			}
			out, err := app.ArchiveCLI.Export(context.Background(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "exported %d areas, %d sessions, %d reflections to %s\n",
				out.PracticeAreas, out.Sessions, out.Reflections, out.Path)
			return nil
		},
	}
}

func newImportCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "import <path>",
		Short: "Replace all journal data from a JSON snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := load()
			if err != nil {
				return err
			}
			out, err := app.ArchiveCLI.Import(context.Background(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %d areas, %d sessions, %d reflections\n",
				out.PracticeAreas, out.Sessions, out.Reflections)
			return nil
		},
	}
}
