package models

import (
	"encoding/json"
	"fmt"
	"time"
)

type TargetKind string

const (
	TargetAgency   TargetKind = "agency"
	TargetCustomer TargetKind = "customer"
)

// NotificationTarget is either an AgencyTarget or a CustomerTarget.
type NotificationTarget interface {
	Kind() TargetKind
	TargetID() string
	isNotificationTarget()
}

type AgencyTarget struct {
	AgencyID string
}

func (AgencyTarget) Kind() TargetKind      { return TargetAgency }
func (t AgencyTarget) TargetID() string    { return t.AgencyID }
func (AgencyTarget) isNotificationTarget() {}
func (t AgencyTarget) String() string      { return "agency:" + t.AgencyID }

type CustomerTarget struct {
	CustomerID string
}

func (CustomerTarget) Kind() TargetKind      { return TargetCustomer }
func (t CustomerTarget) TargetID() string    { return t.CustomerID }
func (CustomerTarget) isNotificationTarget() {}
func (t CustomerTarget) String() string      { return "customer:" + t.CustomerID }

// TargetFor rebuilds a target from its stored kind and id.
func TargetFor(kind TargetKind, id string) (NotificationTarget, error) {
	switch kind {
	case TargetAgency:
		return AgencyTarget{AgencyID: id}, nil
	case TargetCustomer:
		return CustomerTarget{CustomerID: id}, nil
	default:
		return nil, fmt.Errorf("unknown notification target kind %q", kind)
	}
}

type Notification struct {
	ID          string             `json:"id"`
	Target      NotificationTarget `json:"-"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Link        string             `json:"link,omitempty"`
	Read        bool               `json:"read"`
	CreatedAt   time.Time          `json:"created_at"`
}

type notificationJSON struct {
	ID          string     `json:"id"`
	TargetKind  TargetKind `json:"target_kind"`
	TargetID    string     `json:"target_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Link        string     `json:"link,omitempty"`
	Read        bool       `json:"read"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (n Notification) MarshalJSON() ([]byte, error) {
	out := notificationJSON{
		ID:          n.ID,
		Title:       n.Title,
		Description: n.Description,
		Link:        n.Link,
		Read:        n.Read,
		CreatedAt:   n.CreatedAt,
	}
	if n.Target != nil {
		out.TargetKind = n.Target.Kind()
		out.TargetID = n.Target.TargetID()
	}
	return json.Marshal(out)
}

func (n *Notification) UnmarshalJSON(data []byte) error {
	var in notificationJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*n = Notification{
		ID:          in.ID,
		Title:       in.Title,
		Description: in.Description,
		Link:        in.Link,
		Read:        in.Read,
		CreatedAt:   in.CreatedAt,
	}
	if in.TargetKind != "" {
		target, err := TargetFor(in.TargetKind, in.TargetID)
		if err != nil {
			return err
		}
		n.Target = target
	}
	return nil
}
