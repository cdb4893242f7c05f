package model

// MaintenanceTask is one entry of the maintenance schedule.
type MaintenanceTask struct {
	ID       int    `json:"id"`
	Task     string `json:"task"`
	Due      string `json:"due"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
}

// DefaultMaintenanceTasks is the schedule a fresh engine starts with.
func DefaultMaintenanceTasks() []MaintenanceTask {
	return []MaintenanceTask{
		{ID: 1, Task: "Lubrication Check", Due: "2h", Status: "Pending", Priority: "Medium"},
		{ID: 2, Task: "Firmware Update", Due: "6h", Status: "Pending", Priority: "Low"},
		{ID: 3, Task: "Bearing Inspection", Due: "24h", Status: "Scheduled", Priority: "High"},
	}
}

// OptimizedBearingTask replaces the scheduled bearing inspection.
var OptimizedBearingTask = MaintenanceTask{
	ID: 4, Task: "Predictive Bearing Replacement", Due: "NOW", Status: "AI Optimized", Priority: "Critical",
}
