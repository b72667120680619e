package household

type EventKind string

const (
	EventJoined      EventKind = "joined"
	EventLeft        EventKind = "left"
	EventRoleChanged EventKind = "role_changed"
)

// Event describes a membership change. Subscribers run synchronously after
// the change has been committed; they must not block.
type Event struct {
	Kind        EventKind
	HouseholdID string
	MemberID    string
	Role        Role
}

type Subscriber func(Event)

func (s *Service) Subscribe(fn Subscriber) {
	s.subscribers = append(s.subscribers, fn)
}

func (s *Service) publish(event Event) {
	for _, fn := range s.subscribers {
		fn(event)
	}
}
