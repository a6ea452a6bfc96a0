package chatroom

import "strings"

// commandKind enumerates the closed set of commands a client may issue.
//
// Inbound lines are parsed into one of these variants before any dispatch
// logic runs, so the session loop never branches on raw text.
type commandKind int

const (
	// cmdChat broadcasts the line verbatim to the sender's current room.
	cmdChat commandKind = iota
	// cmdJoin leaves the current room, if any, and joins another one.
	cmdJoin
	// cmdLeave leaves the current room.
	cmdLeave
	// cmdList requests the roster of the current room.
	cmdList
	// cmdRooms requests the list of every active room.
	cmdRooms
	// cmdHelp lists the available commands.
	cmdHelp
	// cmdQuit closes the connection.
	cmdQuit
)

// commandPrefix distinguishes control commands from plain chat text.
const commandPrefix = "/"

// command is a single parsed inbound line.
type command struct {
	kind commandKind

	// arg of the command: the room name for `cmdJoin` and the message
	// body for `cmdChat`. Empty otherwise.
	arg string
}

// helpText is sent to a session in response to `/help`.
const helpText = `Available commands:
  /join <room> - leave your current room, if any, and join <room>
  /leave - leave your current room
  /list - list who is in your current room
  /rooms - list every active room and its member count
  /help - show this message
  /quit - close the connection
Anything else is sent to your current room as a chat message.`

// parseCommand parse one inbound line into a `command`.
//
// Lines starting with `commandPrefix` are control commands: the verb is
// case-insensitive and the argument, if any, is whitespace-trimmed. A
// control verb that is unknown, or that is missing a required argument,
// fails with `InvalidCommand`. Anything else is chat text, forwarded
// verbatim.
func parseCommand(line string) (command, error) {
	if !strings.HasPrefix(line, commandPrefix) {
		return command{kind: cmdChat, arg: line}, nil
	}

	verb, arg, _ := strings.Cut(line[len(commandPrefix):], " ")
	verb = strings.ToLower(strings.TrimSpace(verb))
	arg = strings.TrimSpace(arg)

	switch verb {
	case "join":
		if len(arg) == 0 {
			return command{}, InvalidCommand
		}
		return command{kind: cmdJoin, arg: arg}, nil
	case "leave":
		return command{kind: cmdLeave}, nil
	case "list":
		return command{kind: cmdList}, nil
	case "rooms":
		return command{kind: cmdRooms}, nil
	case "help":
		return command{kind: cmdHelp}, nil
	case "quit":
		return command{kind: cmdQuit}, nil
	default:
		return command{}, InvalidCommand
	}
}
