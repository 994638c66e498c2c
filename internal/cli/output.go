package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/tranleduy2000/c-cpp-compiler-sub000/internal/logger"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/download"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/installer"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/model"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/orchestrator"
)

// printer renders command results as colored text or JSON and receives engine notifications.
type printer struct {
	w    io.Writer
	json bool

	mu       sync.Mutex
	progress map[string]int64 // last logged percentage step per package
}

func newPrinter(format string, w io.Writer) *printer {
	return &printer{
		w:        w,
		json:     format == "json",
		progress: make(map[string]int64),
	}
}

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	failColor = color.New(color.FgRed, color.Bold)
	nameColor = color.New(color.Bold)
)

// OnEvent implements installer.Hooks.
func (p *printer) OnEvent(ev installer.Event) {
	if p.json {
		return
	}
	switch ev.State {
	case installer.Installed:
		_, _ = okColor.Fprintf(p.w, "installed %s %s\n", ev.Package, ev.Version)
	case installer.Skipped:
		_, _ = warnColor.Fprintf(p.w, "skipped %s %s (already installed)\n", ev.Package, ev.Version)
	case installer.Replacing:
		_, _ = warnColor.Fprintf(p.w, "%s replaces %s\n", ev.Package, ev.Detail)
	case installer.Failed:
		_, _ = failColor.Fprintf(p.w, "failed %s: %s\n", ev.Package, ev.Detail)
	case installer.Planned:
	default:
		logger.Debug(ev.State.String(), logger.Fields{"package": ev.Package})
	}
}

// OnProgress implements installer.Hooks.
func (p *printer) OnProgress(pr download.Progress) {
	if pr.Total <= 0 {
		return
	}
	step := pr.Received * 100 / pr.Total / progressStep
	p.mu.Lock()
	last, seen := p.progress[pr.ID]
	if seen && step <= last {
		p.mu.Unlock()
		return
	}
	p.progress[pr.ID] = step
	p.mu.Unlock()

	logger.Info("Downloading", logger.Fields{
		"package":  pr.ID,
		"received": humanize.IBytes(uint64(pr.Received)),
		"total":    humanize.IBytes(uint64(pr.Total)),
	})
}

func (p *printer) onPhase(e orchestrator.Event) {
	logger.Debug("Phase", logger.Fields{"phase": e.Phase, "id": e.ID, "msg": e.Msg})
}

func (p *printer) printJSON(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printPlan shows the packages of plan with their humanized totals.
func (p *printer) printPlan(plan *model.Plan, dryRun bool) error {
	if p.json {
		return p.printJSON(struct {
			DryRun        bool                   `json:"dry_run"`
			Packages      []*model.PackageRecord `json:"packages"`
			DownloadSize  int64                  `json:"download_size"`
			InstalledSize int64                  `json:"installed_size"`
		}{dryRun, plan.Records, plan.TotalDownloadSize, plan.TotalInstallSize})
	}

	if plan.Empty() {
		_, _ = fmt.Fprintln(p.w, "Nothing to do.")
		return nil
	}
	_, _ = fmt.Fprintf(p.w, "Packages (%d):", len(plan.Records))
	for _, rec := range plan.Records {
		_, _ = fmt.Fprintf(p.w, " %s", nameColor.Sprint(rec.Name+"-"+rec.Version))
	}
	_, _ = fmt.Fprintf(p.w, "\nDownload size:  %s\nInstalled size: %s\n",
		humanize.IBytes(uint64(max(plan.TotalDownloadSize, 0))),
		humanize.IBytes(uint64(max(plan.TotalInstallSize, 0))))
	return nil
}

// printResult summarizes a transaction.
func (p *printer) printResult(res *installer.Result) error {
	if res == nil {
		return nil
	}
	if p.json {
		type row struct {
			Name    string `json:"name"`
			Version string `json:"version"`
			State   string `json:"state"`
			Error   string `json:"error,omitempty"`
		}
		rows := make([]row, 0, len(res.Packages))
		for _, pkg := range res.Packages {
			r := row{Name: pkg.Name, Version: pkg.Version, State: pkg.State.String()}
			if pkg.Err != nil {
				r.Error = pkg.Err.Error()
			}
			rows = append(rows, r)
		}
		return p.printJSON(struct {
			Packages      []row    `json:"packages"`
			PostInstalled []string `json:"post_installed"`
		}{rows, res.PostInstalled})
	}

	_, _ = fmt.Fprintf(p.w, "%d installed, %d skipped, %d failed\n",
		res.Count(installer.Installed), res.Count(installer.Skipped), res.Count(installer.Failed))
	if len(res.PostInstalled) > 0 {
		_, _ = fmt.Fprintf(p.w, "Ran post-install scripts: %s\n", strings.Join(res.PostInstalled, ", "))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
