package system

import (
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// ProcessStats is a snapshot of this process's resource use.
type ProcessStats struct {
	CPUPercent  float64
	RSS         uint64
	TotalMemory uint64
	Goroutines  int
}

// Stats samples the current process. Fields gopsutil cannot fill on this
// platform are left zero.
func Stats() (ProcessStats, error) {
	st := ProcessStats{Goroutines: runtime.NumGoroutine()}
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return st, err
	}
	if cpu, err := p.CPUPercent(); err == nil {
		st.CPUPercent = cpu
	}
	if m, err := p.MemoryInfo(); err == nil {
		st.RSS = m.RSS
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		st.TotalMemory = vm.Total
	}
	return st, nil
}
