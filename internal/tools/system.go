package tools

import (
	"context"
	"fmt"
	"sort"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
)

func getCPUInfo(ctx context.Context, _ map[string]any) map[string]any {
	times, err := cpu.TimesWithContext(ctx, false)
	if err != nil {
		return fail("cpu times: %v", err)
	}
	percents, err := cpu.PercentWithContext(ctx, 0, true)
	if err != nil {
		return fail("cpu percent: %v", err)
	}
	count, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return fail("cpu count: %v", err)
	}

	fields := map[string]any{
		"cpu_percent_per_cpu": percents,
		"cpu_count":           count,
	}
	if len(times) > 0 {
		fields["cpu_times"] = map[string]any{
			"user":   times[0].User,
			"system": times[0].System,
			"idle":   times[0].Idle,
			"iowait": times[0].Iowait,
		}
	}
	if avg, err := load.AvgWithContext(ctx); err == nil {
		fields["cpu_load_avg"] = []float64{avg.Load1, avg.Load5, avg.Load15}
	}
	return ok(fields)
}

func getMemoryInfo(ctx context.Context, _ map[string]any) map[string]any {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return fail("virtual memory: %v", err)
	}
	sw, err := mem.SwapMemoryWithContext(ctx)
	if err != nil {
		return fail("swap memory: %v", err)
	}

	return ok(map[string]any{
		"virtual_memory": map[string]any{
			"total":        vm.Total,
			"available":    vm.Available,
			"used":         vm.Used,
			"percent_used": vm.UsedPercent,
		},
		"swap_memory": map[string]any{
			"total":        sw.Total,
			"used":         sw.Used,
			"free":         sw.Free,
			"percent_used": sw.UsedPercent,
		},
	})
}

type diskUsageRequest struct {
	Path string `mapstructure:"path"`
}

func getDiskUsage(ctx context.Context, args map[string]any) map[string]any {
	var req diskUsageRequest
	if err := decodeArgs(args, &req); err != nil {
		return fail("invalid arguments: %v", err)
	}
	if req.Path == "" {
		req.Path = "/"
	}

	usage, err := disk.UsageWithContext(ctx, req.Path)
	if err != nil {
		return fail("disk usage for %s: %v", req.Path, err)
	}

	const gb = 1024 * 1024 * 1024
	return ok(map[string]any{
		"path":         req.Path,
		"total":        fmt.Sprintf("%.2f GB", float64(usage.Total)/gb),
		"used":         fmt.Sprintf("%.2f GB", float64(usage.Used)/gb),
		"free":         fmt.Sprintf("%.2f GB", float64(usage.Free)/gb),
		"percent_used": fmt.Sprintf("%.1f%%", usage.UsedPercent),
	})
}

// listProcessesLimit bounds how many processes are reported, largest RSS
// first.
const listProcessesLimit = 20

func listProcesses(ctx context.Context, _ map[string]any) map[string]any {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return fail("list processes: %v", err)
	}

	type procInfo struct {
		entry map[string]any
		rss   uint64
	}
	infos := make([]procInfo, 0, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue // process may have exited or denied access
		}
		username, _ := p.UsernameWithContext(ctx)
		var rss uint64
		if memInfo, err := p.MemoryInfoWithContext(ctx); err == nil && memInfo != nil {
			rss = memInfo.RSS
		}
		infos = append(infos, procInfo{
			entry: map[string]any{
				"pid":       p.Pid,
				"name":      name,
				"username":  username,
				"rss_bytes": rss,
			},
			rss: rss,
		})
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].rss > infos[j].rss })
	if len(infos) > listProcessesLimit {
		infos = infos[:listProcessesLimit]
	}

	entries := make([]map[string]any, len(infos))
	for i, info := range infos {
		entries[i] = info.entry
	}
	return ok(map[string]any{"processes": entries})
}
