package service

// ExpireNow runs the expiry callback for key as if its timer had fired.
func (rt *Router) ExpireNow(key string) {
	if _, ok := rt.wizards.Get(key); ok {
		rt.reaper.Disarm(key)
		rt.expireWizard(key)
		return
	}
	rt.reaper.Disarm(key)
	rt.expirePager(key)
}

// Armed reports whether an expiry timer is pending for key.
func (rt *Router) Armed(key string) bool {
	return rt.reaper.Armed(key)
}
