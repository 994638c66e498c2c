package model

// Plan is the ordered, duplicate free list of records a request resolves to.
// Dependencies come before their dependents unless they were pruned as already satisfied.
type Plan struct {
	Records           []*PackageRecord
	TotalDownloadSize int64
	TotalInstallSize  int64
}

// Recompute sums the download and install sizes of every record in the plan.
func (p *Plan) Recompute() {
	p.TotalDownloadSize = 0
	p.TotalInstallSize = 0
	for _, r := range p.Records {
		p.TotalDownloadSize += r.DownloadSize
		p.TotalInstallSize += r.InstalledSize
	}
}

// Names returns the package names of the plan in order.
func (p *Plan) Names() []string {
	names := make([]string, 0, len(p.Records))
	for _, r := range p.Records {
		names = append(names, r.Name)
	}
	return names
}

// Empty reports whether there is nothing to install.
func (p *Plan) Empty() bool {
	return p == nil || len(p.Records) == 0
}
