package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Apply merges the patch into u. Unset fields are left unchanged.
func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Position != nil {
		u.Position = *p.Position
	}
	if p.Department != nil {
		u.Department = *p.Department
	}
}

// Apply merges the patch into pr. Unset fields are left unchanged.
func (p ProjectPatch) Apply(pr *Project) {
	if p.Name != nil {
		pr.Name = *p.Name
	}
	if p.Status != nil {
		pr.Status = *p.Status
	}
	if p.Progress != nil {
		pr.Progress = *p.Progress
	}
	if p.Budget != nil {
		pr.Budget = *p.Budget
	}
	if p.Spent != nil {
		pr.Spent = *p.Spent
	}
	if p.ClientID != nil {
		pr.ClientID = *p.ClientID
	}
	if p.Team != nil {
		pr.Team = append([]primitive.ObjectID(nil), *p.Team...)
	}
	if p.Priority != nil {
		pr.Priority = *p.Priority
	}
}

// Apply merges the patch into t. Unset fields are left unchanged.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.ClearAssignee {
		t.AssigneeID = nil
	} else if p.AssigneeID != nil {
		id := *p.AssigneeID
		t.AssigneeID = &id
	}
	if p.Deadline != nil {
		t.Deadline = *p.Deadline
	}
	if p.EstimatedHours != nil {
		t.EstimatedHours = *p.EstimatedHours
	}
	if p.ActualHours != nil {
		t.ActualHours = *p.ActualHours
	}
}

// Apply merges the patch into e. Unset fields are left unchanged.
func (p TimeEntryPatch) Apply(e *TimeEntry) {
	if p.Minutes != nil {
		e.Minutes = *p.Minutes
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
}
