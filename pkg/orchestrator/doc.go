/*
Package orchestrator decides what to mount where and turns every outcome into
a notification message.

Each operation takes one snapshot of the connection table (and, for mounts,
of the logical drive bitmask), decides, and runs at most one net use command
per drive. Nothing is retried. The table is shared with the rest of the
system, so a snapshot may already be stale when the command runs; net use
then reports the conflict on stderr and the operation fails with that text.

Operations never return Go errors. A Result carries a typed Outcome for
callers that branch on it and the Message shown to the user, capped at
MaxMessageLength runes.

# Drive Letter Selection

A share with a preferred letter is mounted there or not at all: if the
preferred letter is taken the operation reports a conflict. A share without
a preferred letter gets the highest letter that is neither a local drive nor
in the connection table. A and B are never chosen.

# Logging

Every operation gets an id (a random UUID) attached to its logger, its audit
events and its log lines:

	klog.V(2) - operation outcomes
	klog.V(4) - decisions (letter chosen, table snapshot size)
	klog.V(5) - raw net use output (in pkg/mount)
*/
package orchestrator
