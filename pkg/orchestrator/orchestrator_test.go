package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	pkgerrors "github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/errors"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/index"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/installer"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/model"
	ocmocks "github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/orchestrator/mocks"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/platform"
	"github.com/tranleduy2000/c-cpp-compiler-sub000/pkg/resolver"
)

func rec(name, version, depends string) *model.PackageRecord {
	return &model.PackageRecord{Name: name, Version: version, DependsExpr: depends, ArchiveFile: name + ".zip"}
}

type harness struct {
	idx    *ocmocks.MockIndexManager
	engine *ocmocks.MockTransactionEngine
	state  *ocmocks.MockStateReader
	events []Event
	orch   *Orchestrator
}

func newHarness(t *testing.T) *harness {
	ctrl := gomock.NewController(t)
	h := &harness{
		idx:    ocmocks.NewMockIndexManager(ctrl),
		engine: ocmocks.NewMockTransactionEngine(ctrl),
		state:  ocmocks.NewMockStateReader(ctrl),
	}
	h.orch = New(h.idx, h.engine, h.state, platform.New("aarch64", ""), Hooks{
		OnEvent: func(e Event) { h.events = append(h.events, e) },
	})
	return h
}

func (h *harness) phases() []string {
	out := make([]string, 0, len(h.events))
	for _, e := range h.events {
		out = append(out, e.Phase)
	}
	return out
}

func TestSync(t *testing.T) {
	h := newHarness(t)
	h.idx.EXPECT().Sync(gomock.Any(), true).Return(nil)
	require.NoError(t, h.orch.Sync(context.Background(), true))
	assert.Equal(t, []string{"syncing", "done"}, h.phases())

	h.idx.EXPECT().Sync(gomock.Any(), false).Return(pkgerrors.ErrDownloadFailed)
	require.ErrorIs(t, h.orch.Sync(context.Background(), false), pkgerrors.ErrDownloadFailed)
}

func TestSync_NoIndexManager(t *testing.T) {
	require.Error(t, (&Orchestrator{}).Sync(context.Background(), false))
}

func TestInstall_ExecutesResolvedPlan(t *testing.T) {
	h := newHarness(t)
	set := index.NewSet(index.List{rec("gcc", "11", "libc binutils"), rec("libc", "1", ""), rec("binutils", "2", "")}, nil)
	h.idx.EXPECT().LoadSet(gomock.Any()).Return(set, nil)

	want := &installer.Result{Packages: []installer.PackageResult{{Name: "gcc", State: installer.Installed}}}
	h.engine.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, rc *resolver.Context, plan *model.Plan) (*installer.Result, error) {
			assert.Same(t, set, rc.Set)
			assert.Equal(t, "aarch64", rc.Platform.Arch)
			assert.Equal(t, []string{"libc", "binutils", "gcc"}, plan.Names())
			return want, nil
		})

	report, err := h.orch.Install(context.Background(), []string{"gcc"}, InstallOptions{})
	require.NoError(t, err)
	assert.Same(t, want, report.Result)
	assert.Equal(t, []string{"resolving", "planning", "planning", "planning", "installing", "done"}, h.phases())
}

func TestInstall_DryRun(t *testing.T) {
	h := newHarness(t)
	h.idx.EXPECT().LoadSet(gomock.Any()).Return(index.NewSet(index.List{rec("make", "4", "")}, nil), nil)

	report, err := h.orch.Install(context.Background(), []string{"make"}, InstallOptions{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"make"}, report.Plan.Names())
	assert.Nil(t, report.Result)
	assert.Equal(t, "dry-run", h.events[len(h.events)-1].Msg)
}

func TestInstall_ReportsMissingBeforeChanges(t *testing.T) {
	h := newHarness(t)
	h.idx.EXPECT().LoadSet(gomock.Any()).Return(index.NewSet(index.List{rec("make", "4", "")}, nil), nil)

	_, err := h.orch.Install(context.Background(), []string{"make", "rustc", "go|swift"}, InstallOptions{})
	require.ErrorIs(t, err, pkgerrors.ErrPackageNotFound)
	assert.Contains(t, err.Error(), "rustc, go|swift")
}

func TestInstall_AlreadyInstalledIsEmptyPlan(t *testing.T) {
	h := newHarness(t)
	make4 := rec("make", "4", "")
	h.idx.EXPECT().LoadSet(gomock.Any()).Return(index.NewSet(index.List{make4}, index.List{make4}), nil)

	report, err := h.orch.Install(context.Background(), []string{"make"}, InstallOptions{})
	require.NoError(t, err)
	assert.True(t, report.Plan.Empty())
	assert.Nil(t, report.Result)
}

func TestInstall_PropagatesEngineFailure(t *testing.T) {
	h := newHarness(t)
	h.idx.EXPECT().LoadSet(gomock.Any()).Return(index.NewSet(index.List{rec("clang", "15", "")}, nil), nil)
	partial := &installer.Result{Packages: []installer.PackageResult{{Name: "clang", State: installer.Failed}}}
	failure := &pkgerrors.TransactionError{Package: "clang", Err: pkgerrors.ErrCorruptArchive}
	h.engine.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any()).Return(partial, failure)

	report, err := h.orch.Install(context.Background(), []string{"clang"}, InstallOptions{})
	require.ErrorIs(t, err, pkgerrors.ErrCorruptArchive)
	assert.Same(t, partial, report.Result)
}

func TestInstall_LoadSetError(t *testing.T) {
	h := newHarness(t)
	h.idx.EXPECT().LoadSet(gomock.Any()).Return(nil, errors.New("disk gone"))
	_, err := h.orch.Install(context.Background(), []string{"x"}, InstallOptions{})
	require.EqualError(t, err, "disk gone")
}

func TestUpdate(t *testing.T) {
	available := index.List{rec("gcc", "12", "libc"), rec("libc", "2", ""), rec("make", "4", "")}
	installed := index.List{rec("gcc", "11", "libc"), rec("libc", "1", ""), rec("make", "4", "")}

	tests := []struct {
		name     string
		packages []string
		want     []string
		wantErr  error
	}{
		{name: "everything", want: []string{"libc", "gcc"}},
		{name: "selected", packages: []string{"libc"}, want: []string{"libc"}},
		{name: "up to date", packages: []string{"make"}},
		{name: "not installed", packages: []string{"cmake"}, wantErr: pkgerrors.ErrNotInstalled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.idx.EXPECT().LoadSet(gomock.Any()).Return(index.NewSet(available, installed), nil)

			report, err := h.orch.Update(context.Background(), UpdateOptions{Packages: tt.packages, DryRun: true})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.want == nil {
				assert.True(t, report.Plan.Empty())
				return
			}
			assert.Equal(t, tt.want, report.Plan.Names())
		})
	}
}

func TestUninstall(t *testing.T) {
	h := newHarness(t)
	h.state.EXPECT().State("gcc").Return(model.Installed)
	h.state.EXPECT().State("ghost").Return(model.NotInstalled)
	h.state.EXPECT().State("make").Return(model.Installed)
	h.engine.EXPECT().Uninstall(gomock.Any(), "gcc").Return(true)
	h.engine.EXPECT().Uninstall(gomock.Any(), "make").Return(false)

	removed, err := h.orch.Uninstall(context.Background(), []string{"gcc", "ghost", " ", "make"}, UninstallOptions{})
	require.ErrorIs(t, err, pkgerrors.ErrNotInstalled)
	assert.Contains(t, err.Error(), "ghost, make")
	assert.Equal(t, []string{"gcc"}, removed)
}

func TestUninstall_DryRunTouchesNothing(t *testing.T) {
	h := newHarness(t)
	h.state.EXPECT().State("gcc").Return(model.Installed)

	removed, err := h.orch.Uninstall(context.Background(), []string{"gcc"}, UninstallOptions{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"gcc"}, removed)
}

func TestUninstall_Cancelled(t *testing.T) {
	h := newHarness(t)
	h.state.EXPECT().State("gcc").Return(model.Installed)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.orch.Uninstall(ctx, []string{"gcc"}, UninstallOptions{})
	require.ErrorIs(t, err, pkgerrors.ErrCancelled)
}

func TestListInstalled(t *testing.T) {
	h := newHarness(t)
	available := index.List{rec("gcc", "12", ""), rec("make", "4", "")}
	installed := index.List{rec("gcc", "11", ""), rec("make", "4", ""), rec("gdb", "13", "")}
	h.idx.EXPECT().LoadSet(gomock.Any()).Return(index.NewSet(available, installed), nil).Times(2)
	h.state.EXPECT().State("gcc").Return(model.Installed)
	h.state.EXPECT().State("make").Return(model.Installed)
	h.state.EXPECT().State("gdb").Return(model.DescribedOnly).Times(2)

	rows, err := h.orch.ListInstalled(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "12", rows[0].Update)
	assert.Empty(t, rows[1].Update)
	assert.Equal(t, model.DescribedOnly, rows[2].State)

	rows, err = h.orch.ListInstalled(context.Background(), "GD")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "gdb", rows[0].Record.Name)
}

func TestSearch(t *testing.T) {
	h := newHarness(t)
	llvm := rec("llvm", "16", "")
	llvm.Description = "Compiler infrastructure used by clang"
	available := index.List{rec("clang", "16", ""), llvm, rec("clang", "15", ""), rec("make", "4", "")}
	h.idx.EXPECT().LoadSet(gomock.Any()).Return(index.NewSet(available, nil), nil)

	found, err := h.orch.Search(context.Background(), "cl")
	require.NoError(t, err)
	assert.Equal(t, []string{"clang", "llvm"}, found.Names())
}

func TestInfo(t *testing.T) {
	h := newHarness(t)
	set := index.NewSet(index.List{rec("gcc", "12", "")}, index.List{rec("gcc", "11", ""), rec("local", "1", "")})
	h.idx.EXPECT().LoadSet(gomock.Any()).Return(set, nil).Times(3)
	h.state.EXPECT().State(gomock.Any()).Return(model.Installed).Times(3)

	info, err := h.orch.Info(context.Background(), "gcc")
	require.NoError(t, err)
	assert.Equal(t, "12", info.Available.Version)
	assert.Equal(t, "11", info.Installed.Version)
	assert.Equal(t, model.Installed, info.State)

	info, err = h.orch.Info(context.Background(), "local")
	require.NoError(t, err)
	assert.Nil(t, info.Available)

	_, err = h.orch.Info(context.Background(), "nope")
	require.ErrorIs(t, err, pkgerrors.ErrPackageNotFound)
}
