package runtime

// CallSiteSink receives call-stack/coverage notifications forwarded from
// notify_call/notify_ret/notify_basic_block (spec §4.3); package coverage
// implements this to build an AFL-style bitmap without runtime depending
// on coverage (which itself depends on runtime's exported notification
// points, not the reverse).
type CallSiteSink interface {
	NotifyCall(siteID int32)
	NotifyRet(siteID int32)
	NotifyBasicBlock(siteID int32)
}

// SetCallSiteSink installs sink as the receiver of call-site notifications.
// A nil sink (the default) makes the three Notify* methods no-ops.
func (rt *Runtime) SetCallSiteSink(sink CallSiteSink) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.sink = sink
}

// NotifyCall implements notify_call(site_id): emitted at the call site
// just before an instrumented or wrapped call.
func (rt *Runtime) NotifyCall(siteID int32) {
	rt.mu.Lock()
	sink := rt.sink
	rt.mu.Unlock()
	if sink != nil {
		sink.NotifyCall(siteID)
	}
}

// NotifyRet implements notify_ret(site_id): emitted at the return point,
// before the call instruction, per spec §4.5's call/invoke row.
func (rt *Runtime) NotifyRet(siteID int32) {
	rt.mu.Lock()
	sink := rt.sink
	rt.mu.Unlock()
	if sink != nil {
		sink.NotifyRet(siteID)
	}
}

// NotifyBasicBlock implements notify_basic_block(site_id): emitted at each
// basic block's first insertion point.
func (rt *Runtime) NotifyBasicBlock(siteID int32) {
	rt.mu.Lock()
	sink := rt.sink
	rt.mu.Unlock()
	if sink != nil {
		sink.NotifyBasicBlock(siteID)
	}
}
