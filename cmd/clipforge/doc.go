// Command clipforge is the CLI for the clip automation pipeline: it
// discovers candidate gaming videos, analyzes them for viral moments,
// cuts vertical clips, and publishes the best ones.
package main
