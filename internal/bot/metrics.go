package bot

import (
	"sync"
	"time"
)

// InMemoryMetrics implements the Metrics interface with in-memory storage
type InMemoryMetrics struct {
	mu sync.RWMutex

	approvalCounts map[string]int64
	commandCounts  map[string]int64
	errorCounts    map[string]int64
	unhandledCount int64
	startTime      time.Time
}

// NewInMemoryMetrics creates a new in-memory metrics collector
func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{
		approvalCounts: make(map[string]int64),
		commandCounts:  make(map[string]int64),
		errorCounts:    make(map[string]int64),
		startTime:      time.Now(),
	}
}

// IncrementApproval increments the approval counter for a user id label
func (m *InMemoryMetrics) IncrementApproval(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.approvalCounts[userID]++
}

// IncrementCommand increments the counter for a specific command
func (m *InMemoryMetrics) IncrementCommand(command string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commandCounts[command]++
}

// IncrementUnhandled increments the counter of updates no handler claimed
func (m *InMemoryMetrics) IncrementUnhandled() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unhandledCount++
}

// IncrementError increments the counter for a specific error type
func (m *InMemoryMetrics) IncrementError(errorType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCounts[errorType]++
}

// GetApprovalCounts returns a copy of approval counts
func (m *InMemoryMetrics) GetApprovalCounts() map[string]int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int64, len(m.approvalCounts))
	for k, v := range m.approvalCounts {
		counts[k] = v
	}
	return counts
}

// GetCommandCounts returns a copy of command counts
func (m *InMemoryMetrics) GetCommandCounts() map[string]int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int64, len(m.commandCounts))
	for k, v := range m.commandCounts {
		counts[k] = v
	}
	return counts
}

// GetErrorCounts returns a copy of error counts
func (m *InMemoryMetrics) GetErrorCounts() map[string]int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int64, len(m.errorCounts))
	for k, v := range m.errorCounts {
		counts[k] = v
	}
	return counts
}

// GetUnhandledCount returns the number of unhandled updates
func (m *InMemoryMetrics) GetUnhandledCount() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.unhandledCount
}

// GetUptime returns the bot uptime
func (m *InMemoryMetrics) GetUptime() time.Duration {
	return time.Since(m.startTime)
}

// GetStats returns comprehensive statistics
func (m *InMemoryMetrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := make(map[string]interface{})

	totalApprovals := int64(0)
	approvalCounts := make(map[string]int64, len(m.approvalCounts))
	for k, v := range m.approvalCounts {
		totalApprovals += v
		approvalCounts[k] = v
	}
	stats["total_approvals"] = totalApprovals
	stats["approval_counts"] = approvalCounts

	totalCommands := int64(0)
	commandCounts := make(map[string]int64, len(m.commandCounts))
	for k, v := range m.commandCounts {
		totalCommands += v
		commandCounts[k] = v
	}
	stats["total_commands"] = totalCommands
	stats["command_counts"] = commandCounts

	totalErrors := int64(0)
	errorCounts := make(map[string]int64, len(m.errorCounts))
	for k, v := range m.errorCounts {
		totalErrors += v
		errorCounts[k] = v
	}
	stats["total_errors"] = totalErrors
	stats["error_counts"] = errorCounts

	stats["unhandled_updates"] = m.unhandledCount
	stats["uptime_seconds"] = time.Since(m.startTime).Seconds()

	return stats
}
