// Package viz renders a live terminal dashboard for a running force
// evaluation loop: per-category energies, the merged virial, and scrolling
// history charts, built on bubbletea and lipgloss.
package viz
