/*
Package intent turns raw collaborator events into commands.

Collaborators emit raw input as "<namespace>:<verb>" events (gesture:swipe,
voice:open). An Interpreter holds rules keyed by subscription pattern; when a
rule accepts an event it re-emits the command as "intent:<name>" and, if the
rule produced one, dispatches a store action such as navigation/NAVIGATE.

Attach also bridges "interaction:outcome" events into interaction/RECORD
actions, which is how outcomes reach the cognitive detector.
*/
package intent
