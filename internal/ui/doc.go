// Package ui contains the Bubble Tea program that hosts the dashboard
// components. The Model type owns message orchestration; components own
// their state and rendering.
//
// Message flow:
//   - Bubble Tea invokes Model.Update with terminal and timer messages. Each
//     tea.Msg is routed through a typed handler registry so a focused function
//     handles it (key presses, resizes, timer ticks, bus wake-ups).
//   - Handlers translate messages into actions on the shared bus. Background
//     tasks (stream readers, command bus requests) send to the same bus.
//   - At the end of every Update the bus is drained until empty. Each action
//     first applies its global effect (tab switch, focus stack, quit) and is
//     then broadcast to every live component in identity order. An action
//     returned by a component is queued behind the current one.
//
// Focus:
//   - The focus stack holds popups and the search bar. The top entry receives
//     key presses exclusively. With an empty stack the root component handles
//     global keys first and the active tab gets the rest.
//   - Popping the stack re-broadcasts Focus for the new top so it can reclaim
//     input.
//
// Rendering:
//   - The frame timer emits Render; after Render is broadcast the model draws
//     the header, search bar, active tab and footer, then overlays popups from
//     the focus stack. View returns the cached frame.
package ui
