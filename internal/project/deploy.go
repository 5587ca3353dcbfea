package project

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/vk/modtest/internal/agentio"
	"github.com/vk/modtest/internal/handler"
	"github.com/vk/modtest/internal/mockexec"
	"github.com/vk/modtest/internal/model"
)

// Deploy runs the handler for the given resource against a mock agent and
// returns the resulting deployment context. The per-version cache scope is
// released on every exit path; any error while resolving or configuring the
// handler is returned unchanged.
func (p *Project) Deploy(res *model.Resource, dryRun, runAsRoot bool) (*handler.Context, error) {
	uri := agentio.LocalURI
	if runAsRoot {
		uri = agentio.RootURI
	}
	agent := mockexec.NewAgent(uri)
	cache := handler.NewAgentCache()

	var hctx *handler.Context
	err := cache.WithVersion(res.ID.Version, func() error {
		provider, err := p.opts.Commander.GetProvider(cache, agent, res)
		if err != nil {
			return err
		}
		provider.SetCache(cache)
		provider.GetFile = func(key string) ([]byte, error) {
			content, ok := p.blobs.Get(key)
			if !ok {
				return nil, fmt.Errorf("no blob stored under key %q", key)
			}
			return content, nil
		}
		provider.StatFile = p.blobs.Stat
		provider.UploadFile = func(key string, content []byte) error {
			return p.blobs.Put(key, content, true)
		}

		hctx = handler.NewContext(res)
		provider.Execute(hctx, res, dryRun)
		return hctx.Finalize()
	})
	if err != nil {
		return nil, err
	}
	return hctx, nil
}

// DryRun is Deploy with the dry-run flag set.
func (p *Project) DryRun(res *model.Resource, runAsRoot bool) (*handler.Context, error) {
	return p.Deploy(res, true, runAsRoot)
}

// GetResource returns the first compiled resource of the given type whose
// attributes equal every filter value. A resource lacking a filtered attribute
// is excluded. Nil when nothing matches; iteration order is the canonical id
// order, so repeated lookups are deterministic.
func (p *Project) GetResource(resourceType string, filters map[string]any) *model.Resource {
	ids := make([]string, 0, len(p.resources))
	for id := range p.resources {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		res := p.resources[id]
		if !res.IsType(resourceType) {
			continue
		}
		if matchesFilters(res, filters) {
			return res
		}
	}
	return nil
}

func matchesFilters(res *model.Resource, filters map[string]any) bool {
	for attr, want := range filters {
		have, ok := res.Get(attr)
		if !ok {
			return false
		}
		if !reflect.DeepEqual(have, want) {
			return false
		}
	}
	return true
}

// DeployResource locates exactly one resource by type and attribute filters,
// deploys it, and verifies the resulting status equals expect (callers pass
// handler.StatusDeployed in the common case). On mismatch it dumps the
// handler's log entries, including any traceback payload, before returning the
// error. Returns the deployed resource and its context.
func (p *Project) DeployResource(resourceType string, expect handler.Status, runAsRoot bool, filters map[string]any) (*model.Resource, *handler.Context, error) {
	res := p.GetResource(resourceType, filters)
	if res == nil {
		return nil, nil, fmt.Errorf("no resource found of type %q matching the given filters", resourceType)
	}

	hctx, err := p.Deploy(res, false, runAsRoot)
	if err != nil {
		return nil, nil, err
	}

	if hctx.Status() != expect {
		p.dumpContext(hctx)
		return res, hctx, fmt.Errorf("deploy of %s resulted in status %q, expected %q",
			res.ID, hctx.Status(), expect)
	}
	return res, hctx, nil
}

// DryRunResource locates exactly one resource by type and attribute filters,
// dry-runs it, verifies the status equals expect (handler.StatusDry in the
// common case), and returns the computed change set.
func (p *Project) DryRunResource(resourceType string, expect handler.Status, runAsRoot bool, filters map[string]any) (map[string]handler.Change, error) {
	res := p.GetResource(resourceType, filters)
	if res == nil {
		return nil, fmt.Errorf("no resource found of type %q matching the given filters", resourceType)
	}

	hctx, err := p.DryRun(res, runAsRoot)
	if err != nil {
		return nil, err
	}

	if hctx.Status() != expect {
		p.dumpContext(hctx)
		return nil, fmt.Errorf("dry run of %s resulted in status %q, expected %q",
			res.ID, hctx.Status(), expect)
	}
	return hctx.Changes(), nil
}

// dumpContext prints the full deployment record to the project's diagnostic
// writer to aid debugging a failed expectation.
func (p *Project) dumpContext(hctx *handler.Context) {
	out := p.opts.Out
	fmt.Fprintln(out, "Deploy did not result in the expected status")
	fmt.Fprintln(out, "Requested changes:", hctx.Changes())
	for _, entry := range hctx.Logs() {
		fmt.Fprintln(out, "Log:", entry.Message)
		for key, value := range entry.Fields {
			if key == "traceback" {
				continue
			}
			fmt.Fprintf(out, "  %s: %v\n", key, value)
		}
		if tb, ok := entry.Fields["traceback"]; ok {
			fmt.Fprintf(out, "Traceback:\n%v\n", tb)
		}
	}
}
