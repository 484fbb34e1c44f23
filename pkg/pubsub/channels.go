package pubsub

// Channels used between API instances.
const (
	// ChannelCacheInvalidation carries cache invalidation targets so every
	// instance can drop its in-process entries.
	ChannelCacheInvalidation = "estate:cache:invalidate"
)

// Event types.
const (
	EventCacheInvalidate = "cache_invalidate"
)
