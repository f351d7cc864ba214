package kronosim

// EventLogRecord is one entry in the Environment's optional in-memory event
// log (enabled via WithEventLog): a lightweight audit trail of scheduler
// activity, independent of the structured Logger (which is for operator
// diagnostics, not queryable simulation history).
type EventLogRecord struct {
	Time   TickTime
	Kind   string
	Actor  string
	Detail string
}

// recordEvent appends a record if the event log is enabled, trimming the
// oldest entry first once eventLogLimit is reached (0 means unbounded).
func (e *Environment) recordEvent(kind, actor, detail string) {
	if !e.eventLogOn {
		return
	}
	rec := EventLogRecord{Time: e.clock.Now(), Kind: kind, Actor: actor, Detail: detail}
	if e.eventLogLimit > 0 && len(e.eventLog) >= e.eventLogLimit {
		e.eventLog = append(e.eventLog[1:], rec)
		return
	}
	e.eventLog = append(e.eventLog, rec)
}

// EventLog returns a copy of the recorded event log (empty if disabled).
func (e *Environment) EventLog() []EventLogRecord {
	out := make([]EventLogRecord, len(e.eventLog))
	copy(out, e.eventLog)
	return out
}
