package relay

// Compatible reports whether a listener restricted to listenerSrc accepts
// an event from eventSrc.
//
// A nil listener source accepts everything. Otherwise every non-zero field
// of listenerSrc must equal the matching field of eventSrc; a nil event
// source fails any such requirement.
func Compatible(eventSrc, listenerSrc *SourceInfo) bool {
	if listenerSrc == nil {
		return true
	}

	if listenerSrc.Relay != 0 {
		if eventSrc == nil || eventSrc.Relay != listenerSrc.Relay {
			return false
		}
	}

	if !listenerSrc.Emitter.IsZero() {
		if eventSrc == nil || eventSrc.Emitter != listenerSrc.Emitter {
			return false
		}
	}

	return true
}
