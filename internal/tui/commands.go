package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/asengupta/deepread/internal/api"
	"github.com/asengupta/deepread/internal/pdfinfo"
)

// captureError lifts a success=false body into an error so capture jobs fail
// the same way transport errors do.
func captureError(detail string) error {
	if detail == "" {
		detail = "backend reported failure"
	}
	return errors.New(detail)
}

func loadLibraryJob(client *api.Client, opts api.ListOptions) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, 30*time.Second)
		defer cancel()
		lib, err := client.ListPapers(ctx, opts)
		if err != nil {
			return libraryLoadedMsg{err: err}, err
		}
		categories, _ := client.Categories(ctx)
		return libraryLoadedMsg{lib: lib, categories: categories}, nil
	}
}

func openPaperJob(client *api.Client, paperID string) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, 30*time.Second)
		defer cancel()
		detail, err := client.GetPaper(ctx, paperID)
		if err != nil {
			return paperOpenedMsg{paperID: paperID, err: err}, err
		}
		content, err := client.GetPaperContent(ctx, paperID)
		if err != nil {
			return paperOpenedMsg{paperID: paperID, err: err}, err
		}
		msg := paperOpenedMsg{paperID: paperID, detail: detail, content: content}
		// The outline is optional; papers analyzed before opening have one.
		if analysis, err := client.GetAnalysis(ctx, paperID); err == nil {
			msg.analysis = &analysis
		}
		return msg, nil
	}
}

func deletePaperJob(client *api.Client, paperID string) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, 30*time.Second)
		defer cancel()
		err := client.DeletePaper(ctx, paperID)
		return paperDeletedMsg{paperID: paperID, err: err}, err
	}
}

func uploadPaperJob(client *api.Client, path string) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		info, err := pdfinfo.Inspect(path)
		if err != nil {
			return uploadResultMsg{err: err}, err
		}
		ctx, cancel := context.WithTimeout(parent, 2*time.Minute)
		defer cancel()
		receipt, err := client.UploadPaper(ctx, path)
		if err != nil {
			return uploadResultMsg{info: info, err: err}, err
		}
		return uploadResultMsg{info: info, receipt: receipt}, nil
	}
}

func activeTasksJob(client *api.Client) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, 10*time.Second)
		defer cancel()
		tasks, err := client.ActiveTasks(ctx)
		return statusReportMsg{tasks: tasks, err: err}, err
	}
}

func triggerAnalysisJob(client *api.Client, paperID string) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, 30*time.Second)
		defer cancel()
		start, err := client.TriggerAnalysis(ctx, paperID)
		return analysisStartedMsg{paperID: paperID, start: start, err: err}, err
	}
}

func loadTagsJob(client *api.Client, paperID string) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, 30*time.Second)
		defer cancel()
		tags, err := client.GetTags(ctx, paperID)
		return tagsLoadedMsg{paperID: paperID, tags: tags, err: err}, err
	}
}

func classifyPaperJob(client *api.Client, paperID string) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, 2*time.Minute)
		defer cancel()
		result, err := client.ClassifyPaper(ctx, paperID)
		return classifyResultMsg{paperID: paperID, result: result, err: err}, err
	}
}

func confirmTagsJob(client *api.Client, paperID string, tags []string) jobRunner {
	toConfirm := append([]string(nil), tags...)
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, 30*time.Second)
		defer cancel()
		saved, err := client.ConfirmTags(ctx, paperID, toConfirm)
		return tagsSavedMsg{paperID: paperID, tags: saved, err: err}, err
	}
}

func loadWorkbenchJob(client *api.Client, paperID string) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, 30*time.Second)
		defer cancel()
		var (
			wb  api.Workbench
			err error
		)
		if paperID == "" {
			wb, err = client.GetWorkbench(ctx)
		} else {
			wb, err = client.GetPaperWorkbench(ctx, paperID)
		}
		if err != nil {
			return workbenchLoadedMsg{err: err}, err
		}
		stats, err := client.GetWorkbenchStats(ctx)
		if err != nil {
			return workbenchLoadedMsg{err: err}, err
		}
		return workbenchLoadedMsg{wb: wb, stats: stats}, nil
	}
}

func deleteWorkbenchItemJob(client *api.Client, itemID string) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, 30*time.Second)
		defer cancel()
		err := client.DeleteWorkbenchItem(ctx, itemID)
		return workbenchDeletedMsg{itemID: itemID, err: err}, err
	}
}

func captureMethodJob(client *api.Client, req api.AnalyzeTextRequest) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, 2*time.Minute)
		defer cancel()
		result, err := client.AnalyzeMethod(ctx, req)
		msg := captureResultMsg{kind: captureMethod, label: previewText(req.Text, 40), err: err}
		if err == nil && !result.Success {
			msg.err = captureError(result.Error)
		}
		return msg, msg.err
	}
}

func captureAssetJob(client *api.Client, req api.AnalyzeTextRequest) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, 2*time.Minute)
		defer cancel()
		result, err := client.AnalyzeAsset(ctx, req)
		msg := captureResultMsg{kind: captureAsset, label: previewText(req.Text, 40), err: err}
		if err == nil && !result.Success {
			msg.err = captureError(result.Error)
		}
		return msg, msg.err
	}
}

func captureNoteJob(client *api.Client, req api.CreateNoteRequest) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, 2*time.Minute)
		defer cancel()
		receipt, err := client.CreateNote(ctx, req)
		msg := captureResultMsg{kind: captureNote, label: previewText(req.Text, 40), err: err}
		if err == nil && !receipt.Success {
			msg.err = captureError(receipt.Error)
		}
		return msg, msg.err
	}
}

func updateReflectionJob(client *api.Client, itemID, reflection string) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, 30*time.Second)
		defer cancel()
		receipt, err := client.UpdateReflection(ctx, itemID, reflection)
		msg := reflectionSavedMsg{itemID: itemID, err: err}
		if err == nil && !receipt.Success {
			msg.err = captureError(receipt.Error)
		}
		return msg, msg.err
	}
}

func exportCitationsJob(client *api.Client, paperIDs []string, format, dir string) jobRunner {
	ids := append([]string(nil), paperIDs...)
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, 30*time.Second)
		defer cancel()
		export, err := client.ExportCitations(ctx, ids, format)
		if err != nil {
			return exportResultMsg{err: err}, err
		}
		path, err := export.SaveTo(dir)
		if err != nil {
			return exportResultMsg{err: err}, err
		}
		return exportResultMsg{path: path, count: len(ids)}, nil
	}
}
